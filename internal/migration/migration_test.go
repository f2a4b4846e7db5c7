package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, 3, ups)
	assert.Equal(t, ups, downs)
}

func TestRunAutoMigratesSQLite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, Run(conn))

	assert.True(t, conn.Migrator().HasTable("document_nodes"))
	assert.True(t, conn.Migrator().HasTable("identity_accounts"))
}
