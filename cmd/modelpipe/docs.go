package main

// General API documentation for swaggo. Regenerate the admin docs with
// `swag init -g cmd/modelpipe/docs.go -o internal/httpapi/docs`.
//
// @title           modelpipe admin API
// @version         1.0
// @description     Admin surface of the modelpipe model service.
//
// @BasePath  /
//
// @schemes http
