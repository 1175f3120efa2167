package spanner

import (
	"context"
	"log"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	initiator "github.com/cccteam/db-initiator"
	"github.com/cccteam/spxscan"
)

var container *initiator.SpannerContainer

func TestMain(m *testing.M) {
	ctx := context.Background()

	c, err := initiator.NewSpannerContainer(ctx, "latest")
	if err != nil {
		log.Fatal(err)
	}
	container = c

	exitCode := m.Run()

	if err := c.Terminate(ctx); err != nil {
		log.Println(err)
	}
	if err := c.Close(); err != nil {
		log.Println(err)
	}

	os.Exit(exitCode)
}

// newTestDatabase creates a database for the test and applies migrations in
// order. It fails the test on any setup error.
func newTestDatabase(t *testing.T, migrations ...string) *initiator.SpannerDB {
	t.Helper()

	db, err := migrateTestDatabase(t, migrations...)
	if err != nil {
		t.Fatalf("migrateTestDatabase() error = %v", err)
	}

	return db
}

func migrateTestDatabase(t *testing.T, migrations ...string) (*initiator.SpannerDB, error) {
	t.Helper()

	db, err := container.CreateDatabase(t.Context(), t.Name())
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() {
		if err := db.DropDatabase(context.Background()); err != nil {
			t.Errorf("initiator.SpannerDB.DropDatabase() error = %v", err)
		}
		if err := db.Close(); err != nil {
			t.Errorf("initiator.SpannerDB.Close() error = %v", err)
		}
	})

	if err := db.MigrateUp(migrations...); err != nil {
		return nil, err
	}

	return db, nil
}

// storedProfile is the subset of a StaffUserProfiles row the write tests check.
type storedProfile struct {
	FullName string `spanner:"FullName"`
	Role     string `spanner:"Role"`
	Active   bool   `spanner:"Active"`
	SignedIn bool   `spanner:"SignedIn"`
}

func readProfile(t *testing.T, client *spanner.Client, id string) *storedProfile {
	t.Helper()

	stmt := spanner.Statement{
		SQL:    `SELECT FullName, Role, Active, LastLogin IS NOT NULL AS SignedIn FROM StaffUserProfiles WHERE Id = @id`,
		Params: map[string]any{"id": id},
	}
	p := &storedProfile{}
	if err := spxscan.Get(t.Context(), client.Single(), p, stmt); err != nil {
		t.Fatalf("spxscan.Get(): StaffUserProfiles %s: %v", id, err)
	}

	return p
}

// storedAudit is the subset of an AuditLogs row the write tests check.
type storedAudit struct {
	UserID  spanner.NullString `spanner:"UserId"`
	Outcome string             `spanner:"Outcome"`
}

func readAudit(t *testing.T, client *spanner.Client, id string) *storedAudit {
	t.Helper()

	stmt := spanner.Statement{
		SQL:    `SELECT UserId, Outcome FROM AuditLogs WHERE Id = @id`,
		Params: map[string]any{"id": id},
	}
	a := &storedAudit{}
	if err := spxscan.Get(t.Context(), client.Single(), a, stmt); err != nil {
		t.Fatalf("spxscan.Get(): AuditLogs %s: %v", id, err)
	}

	return a
}
