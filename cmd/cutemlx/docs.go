package main

// General API documentation for swaggo. Run `swag init -g cmd/cutemlx/docs.go`
// to regenerate docs for the -tags swagger build.
//
// @title           cutemlx debug API
// @version         1.0
// @description     Read-only observability surface of the local generation pipeline.
//
// @BasePath  /
//
// @schemes http
