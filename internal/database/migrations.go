package database

import "embed"

// Migrations holds the schema of the maze service.
//
//go:embed migrations/*.sql
var Migrations embed.FS
