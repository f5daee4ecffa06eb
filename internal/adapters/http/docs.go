package http

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{title}} - Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.yaml', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`

// OpenAPIPath is where the served OpenAPI document is read from.
var OpenAPIPath = "api/openapi.yaml"

// loadOpenAPI reads and validates the document at path.
func loadOpenAPI(path string) ([]byte, *openapi3.T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return data, doc, nil
}

// SetupDocs registers Swagger UI at /docs and the OpenAPI document at
// /docs/openapi.yaml. The document is loaded once; when it is missing or
// invalid the document route answers 404 docs_unavailable.
func SetupDocs(app *fiber.App) {
	data, doc, err := loadOpenAPI(OpenAPIPath)
	title := "Meetpoint API"
	if err != nil {
		slog.Warn("openapi document unavailable", slog.String("path", OpenAPIPath), slog.String("error", err.Error()))
	} else {
		title = doc.Info.Title + " " + doc.Info.Version
	}
	page := strings.ReplaceAll(swaggerUIHTML, "{{title}}", html.EscapeString(title))

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(page)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if data == nil {
			return newError(c, fiber.StatusNotFound, "docs_unavailable", "OpenAPI document is not available")
		}
		c.Set("Content-Type", "application/yaml")
		return c.Send(data)
	})
}
