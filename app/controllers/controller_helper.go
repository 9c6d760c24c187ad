package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/app/repository"
	"github.com/hearth-collective/hearth/internal/pkg/billing"
	"github.com/hearth-collective/hearth/internal/pkg/blobstore"
	"github.com/hearth-collective/hearth/internal/pkg/config"
	"github.com/hearth-collective/hearth/internal/pkg/counts"
	"github.com/hearth-collective/hearth/internal/pkg/database"
	"github.com/hearth-collective/hearth/internal/pkg/indexer"
	"github.com/hearth-collective/hearth/internal/pkg/recordlog"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
)

// Package-level wiring shared by all controllers. Initialize builds the
// record-log pipeline once: every record append flows through the index
// projector, which hands counter deltas to the aggregator before the index
// entry commits.
var (
	appCollectives config.Collectives
	records        *recordlog.Store
	aggregator     counts.Aggregator
	userIndex      *indexer.Indexer
	accounts       repository.AccountRepository
	billingSvc     *billing.Service
	blobs          *blobstore.Client
)

// Initialize wires the controllers against the shared database handle and
// the static collective configuration.
func Initialize(collectives config.Collectives) {
	db := database.GetDB()
	appCollectives = collectives

	aggregator = counts.NewAggregator(db)
	userIndex = indexer.New(collectives.Names(), indexer.NewEntryStore(db), aggregator)
	records = recordlog.NewStore(db, userIndex.Apply)
	accounts = repository.NewFactory(db).GetAccountRepository()
	billingSvc = billing.NewService(collectives, records, nil)

	blobCfg, err := blobstore.LoadConfig()
	if err != nil {
		log.Printf("blob store configuration error: %v", err)
	} else if blobCfg.IsEnabled() {
		blobs, err = blobstore.NewClient(blobCfg)
		if err != nil {
			log.Printf("blob store unavailable, avatars disabled: %v", err)
		}
	}
}

// currentRecord loads the signed-in user's canonical record.
func currentRecord(c *fiber.Ctx) (*models.UserRecord, error) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.RecordID == "" {
		return nil, errors.New("not signed in")
	}
	return records.Get(c.Context(), userCtx.RecordID)
}

// csrfToken reads the token set by the CSRF middleware; empty outside the
// protected group.
func csrfToken(c *fiber.Ctx) string {
	if t, ok := c.Locals("csrf").(string); ok {
		return t
	}
	return ""
}

// renderError renders the shared error page with the given status code.
func renderError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).Render("error", fiber.Map{
		"Status":  status,
		"Message": message,
	}, "layouts/main")
}
