package main

// General API documentation for swaggo. Run `swag init -g cmd/imgclassd/docs.go -o internal/httpapi/apidocs` to regenerate.
//
// @title           imgclassd API
// @version         1.0
// @description     HTTP API for queued image classification.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
