// Package docs carries the embedded OpenAPI document served to the Swagger UI.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
