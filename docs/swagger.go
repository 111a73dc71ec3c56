package docs

import "github.com/swaggo/swag"

// @title           Planora API
// @version         1.0
// @description     Project management API: projects, membership, Kanban tasks, canvas and external sync

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session

// @tag.name Auth
// @tag.description Registration, login and session management

// @tag.name Projects
// @tag.description Project CRUD and trash lifecycle

// @tag.name Members
// @tag.description Project membership operations

// @tag.name Tasks
// @tag.description Kanban task operations

// @tag.name Canvas
// @tag.description Project whiteboard storage

// @tag.name Sync
// @tag.description External database synchronization

// Register swagger info
func SwaggerInfo() *swag.Spec {
	spec, _ := swag.GetSwagger(swag.Name).(*swag.Spec)
	return spec
}
