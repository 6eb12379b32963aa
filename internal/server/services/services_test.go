package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/auth"
	"github.com/dmitrijs2005/fishtank/internal/server/config"
	"github.com/dmitrijs2005/fishtank/internal/server/serializer"
	"github.com/dmitrijs2005/fishtank/internal/server/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	ser     *serializer.Serializer
	codec   *storage.MemoryCodec
	cfg     *config.Config
	issuer  *auth.Issuer
	users   *UserService
	fish    *FishService
	reports *ReportService
	clock   *fakeClock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	codec := storage.NewMemoryCodec()
	ser, err := serializer.New(context.Background(), codec, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ser.Close(context.Background()) })

	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	issuer := auth.NewIssuer(cfg.SecretKey, cfg.AccessTokenValidityDuration)

	f := &fixture{
		ser:     ser,
		codec:   codec,
		cfg:     cfg,
		issuer:  issuer,
		users:   NewUserService(ser, issuer, cfg, logging.Nop()),
		fish:    NewFishService(ser, logging.Nop()),
		reports: NewReportService(ser, logging.Nop()),
		clock:   clock,
	}
	f.users.now = clock.Now
	f.fish.now = clock.Now
	f.reports.now = clock.Now
	return f
}
