package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/auth"
	"github.com/dmitrijs2005/fishtank/internal/server/config"
	"github.com/dmitrijs2005/fishtank/internal/server/serializer"
	"github.com/dmitrijs2005/fishtank/internal/server/services"
	"github.com/dmitrijs2005/fishtank/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Core is the opened store with the services built over it. The HTTP
// server and the admin CLI share it.
type Core struct {
	Codec      storage.Codec
	Serializer *serializer.Serializer
	Fish       *services.FishService
	Users      *services.UserService
	Reports    *services.ReportService
}

// OpenCore opens the configured codec, loads the committed snapshot and
// starts the serializer. reg may be nil.
func OpenCore(ctx context.Context, cfg *config.Config, log logging.Logger, reg prometheus.Registerer) (*Core, error) {
	codec, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	ser, err := serializer.New(ctx, codec, log,
		serializer.WithMaxQueueDepth(cfg.MaxQueueDepth),
		serializer.WithMetrics(reg),
	)
	if err != nil {
		_ = codec.Close()
		return nil, fmt.Errorf("snapshot load error: %w", err)
	}

	issuer := auth.NewIssuer(cfg.SecretKey, cfg.AccessTokenValidityDuration)
	return &Core{
		Codec:      codec,
		Serializer: ser,
		Fish:       services.NewFishService(ser, log),
		Users:      services.NewUserService(ser, issuer, cfg, log),
		Reports:    services.NewReportService(ser, log),
	}, nil
}

// Close drains queued mutations, then closes the codec.
func (c *Core) Close(ctx context.Context) error {
	return errors.Join(c.Serializer.Close(ctx), c.Codec.Close())
}
