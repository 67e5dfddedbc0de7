package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/constants"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/testutil"
	"go.uber.org/zap"
)

type fakeProvider struct {
	mu         sync.Mutex
	sessions   map[string]*identity.Profile
	profileErr error
	verifyErr  error
	verified   int
}

func (p *fakeProvider) VerifySession(_ context.Context, token string) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verified++
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	profile, ok := p.sessions[token]
	if !ok {
		return nil, identity.ErrInvalidSession
	}
	return &identity.Session{Token: token, Subject: profile.ExternalID, SessionID: "sess-" + token}, nil
}

func (p *fakeProvider) GetProfile(_ context.Context, session *identity.Session) (*identity.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	return p.sessions[session.Token], nil
}

func newIdentityService(env *testEnv, provider identity.Provider) *IdentityService {
	return NewIdentityService(env.userRepo, env.tierRepo, env.tokens, provider, zap.NewNop())
}

func TestIdentityService_MissingCredential(t *testing.T) {
	env := newTestEnv(t)
	svc := newIdentityService(env, &fakeProvider{})

	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, apierrors.KindUnauthorized, apierrors.KindOf(err))
}

func TestIdentityService_LocalToken(t *testing.T) {
	env := newTestEnv(t)
	provider := &fakeProvider{}
	svc := newIdentityService(env, provider)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	user, pair, err := env.auth.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	authCtx, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authCtx.UserID)
	assert.Equal(t, models.RoleMember, authCtx.Role)
	assert.Equal(t, identity.SourceLocal, authCtx.Source)
	assert.NotEmpty(t, authCtx.SessionID)
	assert.Zero(t, provider.verified)
}

func TestIdentityService_LocalTokenForDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newIdentityService(env, nil)
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, "gone@example.com")
	pair, err := env.tokens.IssuePair(subjectOf(user))
	require.NoError(t, err)
	require.NoError(t, env.db.Delete(&models.User{}, "id = ?", user.ID).Error)

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestIdentityService_UnknownTokenWithoutProvider(t *testing.T) {
	env := newTestEnv(t)
	svc := newIdentityService(env, nil)

	_, err := svc.Authenticate(context.Background(), "opaque-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Equal(t, apierrors.KindUnauthorized, apierrors.KindOf(err))
}

func TestIdentityService_ProvisionsOnce(t *testing.T) {
	env := newTestEnv(t)
	provider := &fakeProvider{sessions: map[string]*identity.Profile{
		"tok-1": {ExternalID: "ext-1", Email: "Lin@Example.com", FirstName: "Lin", LastName: "Chen", AvatarURL: "https://img/lin.png"},
	}}
	svc := newIdentityService(env, provider)
	ctx := context.Background()

	first, err := svc.Authenticate(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, identity.SourceExternal, first.Source)
	assert.Equal(t, "sess-tok-1", first.SessionID)
	assert.Equal(t, models.RoleMember, first.Role)

	second, err := svc.Authenticate(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)

	var users []models.User
	require.NoError(t, env.db.Where("email = ?", "lin@example.com").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "Lin Chen", users[0].DisplayName)
	assert.Equal(t, "https://img/lin.png", users[0].AvatarURL)
	assert.Equal(t, constants.ExternalPasswordPlaceholder, users[0].PasswordHash)
	assert.Equal(t, testutil.LowestTier(t, env.db).ID, users[0].TierID)
}

func TestIdentityService_ConcurrentFirstRequests(t *testing.T) {
	env := newTestEnv(t)
	provider := &fakeProvider{sessions: map[string]*identity.Profile{
		"tok": {ExternalID: "ext", Email: "race@example.com", FullName: "Race Condition"},
	}}
	svc := newIdentityService(env, provider)

	const callers = 8
	ids := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			authCtx, err := svc.Authenticate(context.Background(), "tok")
			errs[i] = err
			if err == nil {
				ids[i] = authCtx.UserID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "race@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIdentityService_DisplayNameFallsBackToEmail(t *testing.T) {
	env := newTestEnv(t)
	provider := &fakeProvider{sessions: map[string]*identity.Profile{
		"tok": {ExternalID: "ext", Email: "quiet.user@example.com"},
	}}
	svc := newIdentityService(env, provider)

	authCtx, err := svc.Authenticate(context.Background(), "tok")
	require.NoError(t, err)

	user, err := env.userRepo.FindByID(context.Background(), authCtx.UserID)
	require.NoError(t, err)
	assert.Equal(t, "quiet.user", user.DisplayName)
}

func TestIdentityService_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		noTiers  bool
		wantErr  error
		wantKind apierrors.Kind
	}{
		{
			name:     "rejected session",
			provider: &fakeProvider{sessions: map[string]*identity.Profile{}},
			wantErr:  ErrInvalidSession,
			wantKind: apierrors.KindUnauthorized,
		},
		{
			name:     "provider down during verification",
			provider: &fakeProvider{verifyErr: identity.ErrProviderUnavailable},
			wantErr:  ErrProviderFailure,
			wantKind: apierrors.KindExternal,
		},
		{
			name: "profile lookup fails",
			provider: &fakeProvider{
				sessions:   map[string]*identity.Profile{"tok": {Email: "a@example.com"}},
				profileErr: errors.New("timeout"),
			},
			wantErr:  ErrProfileLookup,
			wantKind: apierrors.KindExternal,
		},
		{
			name:     "profile without email",
			provider: &fakeProvider{sessions: map[string]*identity.Profile{"tok": {ExternalID: "ext", Email: "  "}}},
			wantErr:  ErrProfileNoEmail,
			wantKind: apierrors.KindValidation,
		},
		{
			name:     "no tiers seeded",
			provider: &fakeProvider{sessions: map[string]*identity.Profile{"tok": {ExternalID: "ext", Email: "new@example.com"}}},
			noTiers:  true,
			wantErr:  ErrNoTierConfigured,
			wantKind: apierrors.KindConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env *testEnv
			if tt.noTiers {
				env = newTestEnvWithDB(t, testutil.NewEmptyTestDB(t))
			} else {
				env = newTestEnv(t)
			}
			svc := newIdentityService(env, tt.provider)

			_, err := svc.Authenticate(context.Background(), "tok")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, apierrors.KindOf(err))
		})
	}
}
