package main

// General API documentation for swaggo. Run `swag init` to generate docs.
//
// @title           inferd API
// @version         1.0
// @description     HTTP API for concurrent multi-model inference scheduling.
//
// @contact.name   inferd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
