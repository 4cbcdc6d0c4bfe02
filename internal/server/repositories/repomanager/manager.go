package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/campusroutine/internal/dbx"
	"github.com/dmitrijs2005/campusroutine/internal/server/repositories/metadata"
	"github.com/dmitrijs2005/campusroutine/internal/server/repositories/routines"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Routines(db dbx.DBTX) routines.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}
