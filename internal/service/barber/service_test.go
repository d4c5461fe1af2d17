package barber

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/security"
)

type memBarbers struct {
	repository.BarberRepository
	barbers map[uuid.UUID]*model.Barber
	// beforeLink runs at the start of Link when set.
	beforeLink func()
}

func (m *memBarbers) Get(_ context.Context, id uuid.UUID) (*model.Barber, error) {
	b, ok := m.barbers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBarbers) SetInvite(_ context.Context, id uuid.UUID, email, hash string, at time.Time) error {
	b := m.barbers[id]
	b.Email = email
	b.InviteTokenHash = &hash
	b.InvitedAt = &at
	return nil
}

func (m *memBarbers) Link(_ context.Context, id, userID uuid.UUID, tokenHash *string) error {
	if m.beforeLink != nil {
		m.beforeLink()
	}
	b := m.barbers[id]
	if tokenHash != nil && (b.InviteTokenHash == nil || *b.InviteTokenHash != *tokenHash) {
		return repository.ErrNotFound
	}
	b.UserID = &userID
	b.InviteTokenHash = nil
	return nil
}

type memUsers struct {
	byID map[uuid.UUID]*model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, addr string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == addr {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type ownerLookup map[uuid.UUID]*model.Company

func (o ownerLookup) GetByOwner(_ context.Context, ownerID uuid.UUID) (*model.Company, error) {
	if c, ok := o[ownerID]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type sentInvite struct{ to, name, link string }

type recordingSender struct {
	sent []sentInvite
	err  error
}

func (r *recordingSender) SendBarberInvite(_ context.Context, to, name, link string) error {
	r.sent = append(r.sent, sentInvite{to, name, link})
	return r.err
}

type fixture struct {
	svc     *Service
	barbers *memBarbers
	users   *memUsers
	sender  *recordingSender
	owner   *model.Principal
	barber  *model.Barber
}

func newFixture() *fixture {
	owner := &model.Principal{UserID: uuid.New(), Email: "owner@example.com"}
	company := &model.Company{Base: model.Base{ID: uuid.New()}, OwnerID: owner.UserID}
	barber := &model.Barber{ID: uuid.New(), UnitID: uuid.New(), Name: "Rafa", CompanyID: company.ID}

	f := &fixture{
		barbers: &memBarbers{barbers: map[uuid.UUID]*model.Barber{barber.ID: barber}},
		users:   &memUsers{byID: map[uuid.UUID]*model.User{}},
		sender:  &recordingSender{},
		owner:   owner,
		barber:  barber,
	}
	f.svc = NewService(f.barbers, f.users, ownerLookup{owner.UserID: company},
		security.NewBcryptHasher(4), f.sender, "https://app.example.com/accept", logger.Nop())
	f.svc.newToken = func() (string, error) { return "fixed-token", nil }
	return f
}

func (f *fixture) invite(t *testing.T) *model.BarberInviteResponse {
	t.Helper()
	resp, err := f.svc.Invite(context.Background(), f.owner, &model.BarberInviteRequest{
		BarberID: f.barber.ID.String(),
		Email:    "Rafa@Example.com",
		Name:     "Rafa",
	})
	require.NoError(t, err)
	return resp
}

func TestInviteCreatesUserAndSendsLink(t *testing.T) {
	f := newFixture()
	resp := f.invite(t)

	assert.True(t, resp.Success)
	user, err := f.users.Get(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "rafa@example.com", user.Email)

	stored := f.barbers.barbers[f.barber.ID]
	require.NotNil(t, stored.InviteTokenHash)
	assert.NotEqual(t, "fixed-token", *stored.InviteTokenHash)
	assert.Equal(t, "rafa@example.com", stored.Email)

	require.Len(t, f.sender.sent, 1)
	link, err := url.Parse(f.sender.sent[0].link)
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", link.Host)
	assert.Equal(t, "fixed-token", link.Query().Get("token"))
	assert.Equal(t, f.barber.ID.String(), link.Query().Get("barber"))
}

func TestInviteReusesExistingUser(t *testing.T) {
	f := newFixture()
	existing := &model.User{ID: uuid.New(), Email: "rafa@example.com"}
	f.users.byID[existing.ID] = existing

	resp := f.invite(t)
	assert.Equal(t, existing.ID, resp.UserID)
	assert.Len(t, f.users.byID, 1)
}

func TestInviteMissingFieldsIsBadRequest(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Invite(context.Background(), f.owner, &model.BarberInviteRequest{Email: "x@example.com"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.As(err).StatusCode())
	assert.Contains(t, err.Error(), "barberId is required")
	assert.Empty(t, f.sender.sent)
}

func TestInviteRequiresOwnership(t *testing.T) {
	f := newFixture()
	stranger := &model.Principal{UserID: uuid.New()}

	_, err := f.svc.Invite(context.Background(), stranger, &model.BarberInviteRequest{
		BarberID: f.barber.ID.String(), Email: "a@example.com", Name: "A",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestInviteSendFailureIsInternal(t *testing.T) {
	f := newFixture()
	f.sender.err = errors.New("smtp down")

	_, err := f.svc.Invite(context.Background(), f.owner, &model.BarberInviteRequest{
		BarberID: f.barber.ID.String(), Email: "a@example.com", Name: "A",
	})
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.As(err).StatusCode())
}

func TestLinkWithToken(t *testing.T) {
	f := newFixture()
	resp := f.invite(t)
	invitee := &model.Principal{UserID: resp.UserID}

	_, err := f.svc.Link(context.Background(), invitee, &model.BarberLinkRequest{
		BarberID: f.barber.ID.String(), UserID: resp.UserID.String(), InviteToken: "wrong",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	out, err := f.svc.Link(context.Background(), invitee, &model.BarberLinkRequest{
		BarberID: f.barber.ID.String(), UserID: resp.UserID.String(), InviteToken: "fixed-token",
	})
	require.NoError(t, err)
	assert.True(t, out.Success)

	stored := f.barbers.barbers[f.barber.ID]
	assert.Nil(t, stored.InviteTokenHash)
	assert.Equal(t, resp.UserID, *stored.UserID)

	// The token is single use.
	_, err = f.svc.Link(context.Background(), invitee, &model.BarberLinkRequest{
		BarberID: f.barber.ID.String(), UserID: resp.UserID.String(), InviteToken: "fixed-token",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestInviteInvalidRedirectWritesNothing(t *testing.T) {
	f := newFixture()
	f.svc.defaultRedirectURL = "://no-scheme"

	_, err := f.svc.Invite(context.Background(), f.owner, &model.BarberInviteRequest{
		BarberID: f.barber.ID.String(), Email: "a@example.com", Name: "A",
	})
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.As(err).StatusCode())
	assert.Empty(t, f.users.byID)
	assert.Nil(t, f.barbers.barbers[f.barber.ID].InviteTokenHash)
	assert.Empty(t, f.sender.sent)
}

func TestLinkFailsWhenInviteReplaced(t *testing.T) {
	f := newFixture()
	resp := f.invite(t)
	invitee := &model.Principal{UserID: resp.UserID}

	// A second invite lands after the token was checked.
	f.barbers.beforeLink = func() {
		require.NoError(t, f.barbers.SetInvite(context.Background(), f.barber.ID, "rafa@example.com", "newer-hash", time.Now()))
	}

	_, err := f.svc.Link(context.Background(), invitee, &model.BarberLinkRequest{
		BarberID: f.barber.ID.String(), UserID: resp.UserID.String(), InviteToken: "fixed-token",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	stored := f.barbers.barbers[f.barber.ID]
	assert.Nil(t, stored.UserID)
	require.NotNil(t, stored.InviteTokenHash)
	assert.Equal(t, "newer-hash", *stored.InviteTokenHash)
}

func TestLinkWithTokenRejectsOtherCaller(t *testing.T) {
	f := newFixture()
	resp := f.invite(t)

	_, err := f.svc.Link(context.Background(), &model.Principal{UserID: uuid.New()}, &model.BarberLinkRequest{
		BarberID: f.barber.ID.String(), UserID: resp.UserID.String(), InviteToken: "fixed-token",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestLinkByOwnerWithoutToken(t *testing.T) {
	f := newFixture()
	user := &model.User{ID: uuid.New(), Email: "b@example.com"}
	f.users.byID[user.ID] = user

	_, err := f.svc.Link(context.Background(), f.owner, &model.BarberLinkRequest{
		BarberID: f.barber.ID.String(), UserID: user.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, *f.barbers.barbers[f.barber.ID].UserID)

	_, err = f.svc.Link(context.Background(), f.owner, &model.BarberLinkRequest{
		BarberID: f.barber.ID.String(), UserID: uuid.NewString(),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
