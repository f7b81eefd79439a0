package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           vaultd API
// @version         1.0
// @description     Lifecycle and gating daemon for the vault web client.
//
// @contact.name   vaultd maintainers
// @contact.url    https://github.com/your-org/vaultd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
