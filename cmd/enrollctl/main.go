package main

import "os"

// @title Enrollment Portal API
// @version 1.0.0
// @description Student registration and enrollment lifecycle service
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
