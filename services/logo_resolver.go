package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ctfboard/scoreboard/models"
	"github.com/ctfboard/scoreboard/repositories"
	"github.com/ctfboard/scoreboard/storage"
)

const (
	maxCustomLogoBytes = 500000
	// Each base64 character encodes 6 of its 8 bits.
	base64BytesPerChar = 0.75
)

// Allowed image formats, keyed by sniffed content type. The extension comes
// from here, never from the client-supplied type hint.
var customLogoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// LogoResolver resolves the logo to associate with a new team: either a
// validated, persisted custom upload or a stock catalog logo.
type LogoResolver interface {
	// Resolve returns the logo name to store on the team. When isCustom is
	// true, logo holds base64 image data and any validation failure is
	// terminal (ErrLogoInvalid); otherwise logo is a requested stock logo
	// name, and an unknown or disabled name falls back to a random enabled,
	// non-protected catalog logo.
	Resolve(ctx context.Context, logo string, isCustom bool) (string, error)
}

type logoResolver struct {
	logoRepo repositories.LogoRepository
	uploader storage.Uploader
	logger   *slog.Logger
}

func NewLogoResolver(logoRepo repositories.LogoRepository, uploader storage.Uploader, logger *slog.Logger) LogoResolver {
	return &logoResolver{
		logoRepo: logoRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *logoResolver) Resolve(ctx context.Context, logo string, isCustom bool) (string, error) {
	if isCustom {
		return s.resolveCustom(ctx, logo)
	}
	return s.resolveStock(ctx, logo)
}

func (s *logoResolver) resolveCustom(ctx context.Context, data string) (string, error) {
	// Browsers submit base64 in a form body, which turns '+' into ' '.
	encoded := strings.ReplaceAll(data, " ", "+")

	// Size pre-check on the encoded length, so oversized payloads are
	// rejected before decoding.
	if float64(len(encoded))*base64BytesPerChar > maxCustomLogoBytes {
		return "", fmt.Errorf("%w: encoded payload exceeds %d bytes", ErrLogoInvalid, maxCustomLogoBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: bad base64 data", ErrLogoInvalid)
	}
	if len(raw) > maxCustomLogoBytes {
		return "", fmt.Errorf("%w: decoded payload exceeds %d bytes", ErrLogoInvalid, maxCustomLogoBytes)
	}

	contentType := http.DetectContentType(raw)
	ext, ok := customLogoTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: image type %q not allowed", ErrLogoInvalid, contentType)
	}

	// Timestamp plus content hash keeps concurrent uploads from colliding.
	sum := sha256.Sum256(raw)
	name := fmt.Sprintf("custom-%d-%x", time.Now().Unix(), sum[:16])
	filename := name + "." + ext

	result, err := s.uploader.Upload(ctx, filename, contentType, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to store custom logo: %w", err)
	}

	record := &models.Logo{
		Name:    name,
		Path:    result.Location,
		Used:    true,
		Enabled: true,
		Custom:  true,
	}
	if err := s.logoRepo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create custom logo record: %w", err)
	}

	s.logger.Info("custom logo stored",
		slog.String("name", name),
		slog.String("content_type", contentType),
		slog.Int("size_bytes", len(raw)))

	return name, nil
}

func (s *logoResolver) resolveStock(ctx context.Context, name string) (string, error) {
	if name != "" {
		logo, err := s.logoRepo.GetEnabledByName(ctx, name)
		if err == nil {
			return logo.Name, nil
		}
		if !errors.Is(err, repositories.ErrLogoNotFound) {
			return "", fmt.Errorf("failed to look up logo %q: %w", name, err)
		}
		// Unknown or disabled stock name: fall through to a random pick.
	}

	logo, err := s.logoRepo.Random(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to pick a random logo: %w", err)
	}
	return logo.Name, nil
}
