package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/samber/lo"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// DefaultLibraries is the library set the Vinci lending pool links against
var DefaultLibraries = []string{"ReserveLogic", "NFTVaultLogic", "GenericLogic", "ValidationLogic"}

// LibraryResolver deploys or looks up shared libraries in dependency order
type LibraryResolver struct {
	registry  *AddressRegistry
	artifacts ArtifactRepository
	pipeline  *DeploymentPipeline
	sink      ProgressSink
	log       *slog.Logger
}

// NewLibraryResolver creates a new LibraryResolver
func NewLibraryResolver(
	registry *AddressRegistry,
	artifacts ArtifactRepository,
	pipeline *DeploymentPipeline,
	sink ProgressSink,
	log *slog.Logger,
) *LibraryResolver {
	return &LibraryResolver{
		registry:  registry,
		artifacts: artifacts,
		pipeline:  pipeline,
		sink:      sink,
		log:       log.With("component", "LibraryResolver"),
	}
}

// ResolveLibraries returns an address for every required library and every library they link.
// Registered libraries are reused; the rest are linked against the ones resolved
// before them and deployed. No partial set is returned on failure.
func (r *LibraryResolver) ResolveLibraries(ctx context.Context, dctx *DeploymentContext, required []string) (models.LibraryLinkMap, error) {
	order, err := r.Order(ctx, required)
	if err != nil {
		return nil, err
	}

	links := make(models.LibraryLinkMap, len(order))
	for i, lib := range order {
		r.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "libraries",
			Current: i + 1,
			Total:   len(order),
			Message: fmt.Sprintf("Resolving %s", lib),
		})

		record, err := r.registry.Get(ctx, dctx.GlobalKey(lib))
		if err == nil {
			r.log.Debug("library already deployed", "library", lib, "address", record.Address.Hex(), "network", dctx.Network)
			links[lib] = record.Address
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.LibraryDeployFailedError{Library: lib, Err: err}
		}

		record, err = r.pipeline.Deploy(ctx, dctx, DeployRequest{
			LogicalID: lib,
			Contract:  lib,
			Libraries: maps.Clone(links),
			Global:    true,
		})
		if err != nil {
			r.log.Error("library deployment failed", "library", lib, "network", dctx.Network, "error", err)
			return nil, &domain.LibraryDeployFailedError{Library: lib, Err: err}
		}
		links[lib] = record.Address
	}
	return links, nil
}

// Order sorts libraries so that every library follows the ones it links against.
// Libraries that are linked but not listed are appended. Among libraries whose
// dependencies are satisfied the caller's order is kept.
func (r *LibraryResolver) Order(ctx context.Context, required []string) ([]string, error) {
	names := lo.Uniq(required)
	deps := make(map[string][]string, len(names))
	for i := 0; i < len(names); i++ {
		lib := names[i]
		artifact, err := r.artifacts.GetArtifact(ctx, lib)
		if err != nil {
			return nil, &domain.LibraryDeployFailedError{Library: lib, Err: err}
		}
		deps[lib] = artifact.RequiredLibraries()
		for _, dep := range deps[lib] {
			if !lo.Contains(names, dep) {
				r.log.Debug("adding unlisted library dependency", "library", dep, "required_by", lib)
				names = append(names, dep)
			}
		}
	}

	done := make(map[string]bool, len(names))
	order := make([]string, 0, len(names))
	for len(order) < len(names) {
		next, ok := lo.Find(names, func(lib string) bool {
			return !done[lib] && lo.EveryBy(deps[lib], func(dep string) bool { return done[dep] })
		})
		if !ok {
			pending := lo.Filter(names, func(lib string, _ int) bool { return !done[lib] })
			return nil, fmt.Errorf("%w: %v", domain.ErrLibraryCycle, pending)
		}
		done[next] = true
		order = append(order, next)
	}
	return order, nil
}
