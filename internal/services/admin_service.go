package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"obrolan/internal/apperrors"
	"obrolan/internal/models"
	"obrolan/internal/repositories"
	"obrolan/pkg/rabbitmq"
)

// AdminConfig carries the deployment-level knobs of the admin surface.
type AdminConfig struct {
	// BootstrapSecret gates the one-time rank-5 grant. Empty disables
	// bootstrapping entirely.
	BootstrapSecret string
	// BootstrapAdmin names the pre-existing account the bootstrap promotes.
	BootstrapAdmin string
	// SourcePath points at the source bundle served by the rank-5 disclosure
	// endpoint. Empty serves a built-in notice.
	SourcePath string
}

// AdminService handles rank administration, the one-time rank-5 bootstrap,
// update broadcasts and source disclosure.
type AdminService struct {
	userRepo    repositories.UserRepository
	settingRepo repositories.SettingRepository
	mqClient    *rabbitmq.Client // nil when no broker is configured
	cfg         AdminConfig
}

// NewAdminService creates a new AdminService. mqClient may be nil; events are
// then skipped.
func NewAdminService(userRepo repositories.UserRepository, settingRepo repositories.SettingRepository, mqClient *rabbitmq.Client, cfg AdminConfig) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		settingRepo: settingRepo,
		mqClient:    mqClient,
		cfg:         cfg,
	}
}

// SetRank mutates the target account's privilege rank. Only a caller that
// exists and holds rank 5 may do this; rank must be within the 0-5 scale and
// the target must exist.
func (s *AdminService) SetRank(adminUsername, targetUsername string, rank int) (string, error) {
	if adminUsername == "" {
		return "", fmt.Errorf("adminUsername is required: %w", apperrors.ErrAuthorization)
	}
	if !models.ValidRank(rank) {
		return "", fmt.Errorf("rank must be between %d and %d: %w", models.RankMember, models.RankAdmin, apperrors.ErrValidation)
	}

	admin, err := s.userRepo.GetByUsername(adminUsername)
	if err != nil || admin.Rank < models.RankAdmin {
		return "", fmt.Errorf("rank %d required to change ranks: %w", models.RankAdmin, apperrors.ErrAuthorization)
	}

	target, err := s.userRepo.GetByUsername(targetUsername)
	if err != nil {
		return "", err
	}

	oldRank := target.Rank
	target.Rank = rank
	if err := s.userRepo.Update(target); err != nil {
		return "", fmt.Errorf("failed to update rank: %w", err)
	}

	s.publishEvent(map[string]interface{}{
		"type":     "rank_changed",
		"admin":    admin.Username,
		"target":   target.Username,
		"old_rank": oldRank,
		"new_rank": rank,
	})

	return fmt.Sprintf("%s rank changed from %d to %d by %s", target.Username, oldRank, rank, admin.Username), nil
}

// PublishUpdate acknowledges an administrative update broadcast. The delivery
// mechanism itself is external; when a broker is wired the announcement is
// published to the admin event queue.
func (s *AdminService) PublishUpdate(adminUsername, target string) (string, error) {
	if adminUsername == "" {
		return "", fmt.Errorf("adminUsername is required: %w", apperrors.ErrAuthorization)
	}
	if target == "" {
		target = "all"
	}

	s.publishEvent(map[string]interface{}{
		"type":   "update_published",
		"admin":  adminUsername,
		"target": target,
	})

	return fmt.Sprintf("update broadcast to %s initiated by %s", target, adminUsername), nil
}

// InitializeRank5 performs the one-time secret-gated bootstrap that promotes
// the configured account to rank 5, solving the chicken-and-egg problem of
// needing a rank-5 admin to create the first rank-5 admin. The first
// successful call records a consumed marker; every later call fails even with
// the correct secret, so a leaked secret is not a standing escalation path.
func (s *AdminService) InitializeRank5(secret string) (string, error) {
	if s.cfg.BootstrapSecret == "" || secret != s.cfg.BootstrapSecret {
		return "", fmt.Errorf("invalid bootstrap secret: %w", apperrors.ErrAuthorization)
	}

	if _, consumed, err := s.settingRepo.Get(models.SettingBootstrapConsumed); err != nil {
		return "", fmt.Errorf("failed to check bootstrap marker: %w", err)
	} else if consumed {
		return "", fmt.Errorf("bootstrap already consumed: %w", apperrors.ErrAuthorization)
	}

	target, err := s.userRepo.GetByUsername(s.cfg.BootstrapAdmin)
	if err != nil {
		return "", err
	}

	oldRank := target.Rank
	target.Rank = models.RankAdmin
	if err := s.userRepo.Update(target); err != nil {
		return "", fmt.Errorf("failed to grant rank: %w", err)
	}
	if err := s.settingRepo.Set(models.SettingBootstrapConsumed, time.Now().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("failed to record bootstrap marker: %w", err)
	}

	s.publishEvent(map[string]interface{}{
		"type":     "rank_changed",
		"admin":    "bootstrap",
		"target":   target.Username,
		"old_rank": oldRank,
		"new_rank": models.RankAdmin,
	})

	return fmt.Sprintf("%s granted rank %d", target.Username, models.RankAdmin), nil
}

// SourceCode returns the deployment's source bundle to a rank-5 caller.
func (s *AdminService) SourceCode(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("rank %d required for source disclosure: %w", models.RankAdmin, apperrors.ErrAuthorization)
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil || user.Rank < models.RankAdmin {
		return "", fmt.Errorf("rank %d required for source disclosure: %w", models.RankAdmin, apperrors.ErrAuthorization)
	}

	if s.cfg.SourcePath == "" {
		return "// obrolan identity backend\n// no source bundle configured on this deployment\n", nil
	}
	data, err := os.ReadFile(s.cfg.SourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to read source bundle: %w", err)
	}
	return string(data), nil
}

// publishEvent sends an admin event when a broker is configured. Event
// delivery is best effort: a failed publish is logged, never surfaced to the
// operation that triggered it.
func (s *AdminService) publishEvent(event map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishAdminEvent(event); err != nil {
		log.Printf("Failed to publish admin event: %v", err)
	}
}
