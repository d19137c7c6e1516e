package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/config"
	"github.com/Astemirdum/library-catalog/catalog/internal/errs"
	"github.com/Astemirdum/library-catalog/catalog/internal/model"
	"github.com/Astemirdum/library-catalog/catalog/internal/repository"
	"github.com/Astemirdum/library-catalog/catalog/internal/seed"
	"github.com/Astemirdum/library-catalog/catalog/internal/service"
	"github.com/Astemirdum/library-catalog/pkg/logger"
	"github.com/Astemirdum/library-catalog/pkg/validate"
)

const AddAuthorUsage = `usage: add-author "Name" "email@example.com" ["Bio"] ["Nationality"] [BirthYear]

example:
  add-author "Pablo Neruda" "neruda@example.com" "Poeta chileno" "Chileno" 1904`

var (
	ErrUsage = errors.New(AddAuthorUsage)
	// ErrMemoryStore is returned by the command line tools: data written to the memory store is lost on exit.
	ErrMemoryStore = errors.New("memory store is not persistent, set STORE_DRIVER=postgres")
)

// Seed loads the demo catalog into the configured store.
func Seed(ctx context.Context, cfg *config.Config) (seed.Result, error) {
	if err := persistent(cfg); err != nil {
		return seed.Result{}, err
	}
	log := logger.NewLogger(cfg.Log, "seed")
	defer log.Sync() //nolint:errcheck

	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return seed.Result{}, err
	}
	defer closeStore()

	return seedStore(ctx, repo, log)
}

func seedStore(ctx context.Context, repo repository.Repository, log *zap.Logger) (seed.Result, error) {
	res, err := seed.Run(ctx, service.NewService(repo, nil, log), log)
	if err != nil {
		return res, err
	}
	log.Info("seed finished", zap.Int("authors", res.Authors), zap.Int("books", res.Books))
	return res, nil
}

// AddAuthor creates one author from command line arguments and writes the record as JSON to out.
func AddAuthor(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	req, err := ParseAuthorArgs(args)
	if err != nil {
		return err
	}
	if err = persistent(cfg); err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log, "add-author")
	defer log.Sync() //nolint:errcheck

	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	return addAuthor(ctx, repo, log, req, out)
}

func addAuthor(ctx context.Context, repo repository.Repository, log *zap.Logger, req model.CreateAuthorRequest, out io.Writer) error {
	author, err := service.NewService(repo, nil, log).CreateAuthor(ctx, req.Author())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(author)
}

func persistent(cfg *config.Config) error {
	if cfg.Store.Driver == config.DriverMemory {
		return ErrMemoryStore
	}
	return nil
}

// ParseAuthorArgs maps positional arguments onto a validated create request.
func ParseAuthorArgs(args []string) (model.CreateAuthorRequest, error) {
	if len(args) < 2 || len(args) > 5 {
		return model.CreateAuthorRequest{}, ErrUsage
	}
	req := model.CreateAuthorRequest{Name: args[0], Email: args[1]}
	if len(args) > 2 {
		req.Bio = &args[2]
	}
	if len(args) > 3 {
		req.Nationality = &args[3]
	}
	if len(args) > 4 && args[4] != "" {
		year, err := strconv.Atoi(args[4])
		if err != nil {
			return model.CreateAuthorRequest{}, errs.Validation(fmt.Sprintf("birthYear %q is not a number", args[4]))
		}
		req.BirthYear = &year
	}
	if err := validate.NewCustomValidator().Validate(req); err != nil {
		return model.CreateAuthorRequest{}, errs.Validation(err.Error())
	}
	return req, nil
}
