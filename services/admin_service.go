package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coyotecrew/camporee-collator/middleware"
	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/repositories"
	"github.com/coyotecrew/camporee-collator/utils"
)

const adminTokenTTL = 12 * time.Hour

// RosterReport is the admin's roster inspection view: counts by type plus a
// short sample of rows.
type RosterReport struct {
	Counts map[models.EntityType]int `json:"counts"`
	Total  int                       `json:"total"`
	Sample []models.Entity           `json:"sample"`
}

// AdminService covers the destructive maintenance surfaces: login, resets,
// and roster inspection. All of it sits behind the admin token middleware.
type AdminService interface {
	Login(passphrase string) (string, error)
	FullReset(ctx context.Context) error
	ResetScores(ctx context.Context) error
	Roster(ctx context.Context) (*RosterReport, error)
}

type adminService struct {
	scores         repositories.ScoreRepository
	entities       repositories.EntityRepository
	passphraseHash string
	jwtSecret      string
	log            *slog.Logger
}

func NewAdminService(
	scores repositories.ScoreRepository,
	entities repositories.EntityRepository,
	passphraseHash string,
	jwtSecret string,
	log *slog.Logger,
) AdminService {
	if log == nil {
		log = slog.Default()
	}
	return &adminService{
		scores:         scores,
		entities:       entities,
		passphraseHash: passphraseHash,
		jwtSecret:      jwtSecret,
		log:            log,
	}
}

func (s *adminService) Login(passphrase string) (string, error) {
	if !utils.CheckPasswordHash(passphrase, s.passphraseHash) {
		return "", ErrAdminInvalidPassphrase
	}
	token, err := middleware.GenerateAdminToken(s.jwtSecret, adminTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to mint admin token: %w", err)
	}
	return token, nil
}

// FullReset wipes scores and the roster. Device-local queues are unaffected;
// judges resubmit into a clean database.
func (s *adminService) FullReset(ctx context.Context) error {
	if err := s.scores.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.entities.DeleteAll(ctx); err != nil {
		return err
	}
	s.log.Warn("full reset executed: scores and entities wiped")
	return nil
}

func (s *adminService) ResetScores(ctx context.Context) error {
	if err := s.scores.DeleteAll(ctx); err != nil {
		return err
	}
	s.log.Warn("score reset executed")
	return nil
}

const rosterSampleSize = 10

func (s *adminService) Roster(ctx context.Context) (*RosterReport, error) {
	counts, err := s.entities.CountsByType(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.entities.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &RosterReport{Counts: counts, Total: len(list)}
	if len(list) > rosterSampleSize {
		report.Sample = list[:rosterSampleSize]
	} else {
		report.Sample = list
	}
	return report, nil
}
