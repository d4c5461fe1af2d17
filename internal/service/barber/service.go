package barber

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/email"
	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/security"
	"github.com/jwalitptl/barber-api/pkg/validator"
)

// OwnerLookup finds the company owned by a user.
type OwnerLookup interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Company, error)
}

// Service implements the barber invite and link RPCs.
type Service struct {
	barbers            repository.BarberRepository
	users              repository.UserRepository
	companies          OwnerLookup
	hasher             security.TokenHasher
	sender             email.Sender
	validate           *validator.Validator
	defaultRedirectURL string
	logger             *logger.Logger
	now                func() time.Time
	newToken           func() (string, error)
}

func NewService(
	barbers repository.BarberRepository,
	users repository.UserRepository,
	companies OwnerLookup,
	hasher security.TokenHasher,
	sender email.Sender,
	defaultRedirectURL string,
	logger *logger.Logger,
) *Service {
	return &Service{
		barbers:            barbers,
		users:              users,
		companies:          companies,
		hasher:             hasher,
		sender:             sender,
		validate:           validator.New(),
		defaultRedirectURL: defaultRedirectURL,
		logger:             logger,
		now:                time.Now,
		newToken:           security.GenerateToken,
	}
}

// Invite ensures an account exists for the email, stores a hashed one-time
// token on the barber and mails the invite link.
func (s *Service) Invite(ctx context.Context, caller *model.Principal, req *model.BarberInviteRequest) (*model.BarberInviteResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	barberID := uuid.MustParse(req.BarberID)

	barber, err := s.ownedBarber(ctx, caller, barberID)
	if err != nil {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}
	link, err := inviteLink(s.redirectURL(req.RedirectURL), token, barber.ID)
	if err != nil {
		if req.RedirectURL != "" {
			return nil, apperrors.BadRequest("redirectUrl is not a valid URL", err)
		}
		return nil, fmt.Errorf("invalid default redirect URL: %w", err)
	}
	hash, err := s.hasher.Hash(token)
	if err != nil {
		return nil, fmt.Errorf("failed to hash invite token: %w", err)
	}

	addr := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.ensureUser(ctx, addr, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	if err := s.barbers.SetInvite(ctx, barber.ID, addr, hash, s.now()); err != nil {
		return nil, fmt.Errorf("failed to store invite: %w", err)
	}

	if err := s.sender.SendBarberInvite(ctx, addr, req.Name, link); err != nil {
		return nil, fmt.Errorf("failed to send invite: %w", err)
	}

	s.logger.Info("Barber invited", "barber_id", barber.ID.String(), "user_id", user.ID.String())
	return &model.BarberInviteResponse{
		Success: true,
		UserID:  user.ID,
		Message: fmt.Sprintf("Invite sent to %s", addr),
	}, nil
}

// Link attaches a user account to a barber. With an invite token the caller
// must be that user; without one the caller must own the barber's company.
func (s *Service) Link(ctx context.Context, caller *model.Principal, req *model.BarberLinkRequest) (*model.BarberLinkResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	barberID := uuid.MustParse(req.BarberID)
	userID := uuid.MustParse(req.UserID)

	var barber *model.Barber
	var tokenHash *string
	var err error
	if req.InviteToken != "" {
		barber, err = s.getBarber(ctx, barberID)
		if err != nil {
			return nil, err
		}
		if barber.InviteTokenHash == nil {
			return nil, apperrors.BadRequest("no pending invite for this barber", nil)
		}
		if err := s.hasher.Compare(*barber.InviteTokenHash, req.InviteToken); err != nil {
			return nil, apperrors.BadRequest("invalid invite token", err)
		}
		if caller.UserID != userID {
			return nil, apperrors.Forbidden("invite belongs to another user")
		}
		tokenHash = barber.InviteTokenHash
	} else {
		barber, err = s.ownedBarber(ctx, caller, barberID)
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.users.Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.barbers.Link(ctx, barber.ID, userID, tokenHash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("user is already linked to another barber", err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			if tokenHash != nil {
				return nil, apperrors.BadRequest("invalid invite token", err)
			}
			return nil, apperrors.NotFound("barber", err)
		}
		return nil, fmt.Errorf("failed to link barber: %w", err)
	}

	s.logger.Info("Barber linked", "barber_id", barber.ID.String(), "user_id", userID.String())
	return &model.BarberLinkResponse{Success: true, Message: "Barber linked to user"}, nil
}

func (s *Service) getBarber(ctx context.Context, id uuid.UUID) (*model.Barber, error) {
	barber, err := s.barbers.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("barber", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get barber: %w", err)
	}
	return barber, nil
}

func (s *Service) ownedBarber(ctx context.Context, caller *model.Principal, id uuid.UUID) (*model.Barber, error) {
	barber, err := s.getBarber(ctx, id)
	if err != nil {
		return nil, err
	}

	company, err := s.companies.GetByOwner(ctx, caller.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("only the company owner can manage barbers")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if barber.CompanyID != company.ID {
		return nil, apperrors.Forbidden("barber does not belong to your company")
	}
	return barber, nil
}

func (s *Service) ensureUser(ctx context.Context, addr, name string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, addr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &model.User{
		ID:        uuid.New(),
		Email:     addr,
		FullName:  name,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.users.GetByEmail(ctx, addr)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) redirectURL(requested string) string {
	if requested != "" {
		return requested
	}
	return s.defaultRedirectURL
}

func inviteLink(base, token string, barberID uuid.UUID) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("barber", barberID.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}
