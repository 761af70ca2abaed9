// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package reset

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/metrics"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/email"
	"github.com/mauricehans/moto/internal/services/token"
	"github.com/mauricehans/moto/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []email.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, m email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
	return r.err
}

func (r *recordingSender) last(t *testing.T) email.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.msgs)
	return r.msgs[len(r.msgs)-1]
}

type fixture struct {
	svc     *Service
	repo    *repository.Repository
	store   *cache.Memory
	sender  *recordingSender
	tokens  *token.Service
	metrics *metrics.Counters
	admin   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	store := cache.NewMemory(cache.WithJanitor(0))
	t.Cleanup(func() { _ = store.Close() })

	sender := &recordingSender{}
	tokens := token.NewService("test-secret", 15*time.Minute, time.Hour, store)
	counters := metrics.New(store)
	svc := NewService(repo, store, email.NewService(sender), tokens, counters,
		NewTokenGenerator("test-secret", 24*time.Hour),
		Config{FrontendURL: "https://agdemoto.example/", TokenTTL: 24 * time.Hour, OTPTTL: 10 * time.Minute})

	admin := testutil.NewTestUser(t, repo, "root", "old-password", testutil.Superuser(),
		testutil.WithEmail("root.admin@example.com"))

	return &fixture{svc: svc, repo: repo, store: store, sender: sender, tokens: tokens, metrics: counters, admin: admin}
}

func (f *fixture) passwordIs(t *testing.T, password string) bool {
	t.Helper()
	user, err := f.repo.GetUserByID(context.Background(), f.admin.ID)
	require.NoError(t, err)
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// linkParts extracts uid and token from the reset link in the last email.
func (f *fixture) linkParts(t *testing.T) (string, string) {
	t.Helper()
	text := f.sender.last(t).Text
	start := strings.Index(text, "https://agdemoto.example/admin/password-reset/confirm/")
	require.GreaterOrEqual(t, start, 0, text)
	link := strings.Fields(text[start:])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	require.Len(t, parts, 5)
	return parts[3], parts[4]
}

func TestRequestReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.RequestReset(ctx, "  ROOT.admin@example.com "))
	msg := f.sender.last(t)
	assert.Equal(t, "root.admin@example.com", msg.To)

	uid, tok := f.linkParts(t)
	assert.Equal(t, EncodeUID(f.admin.ID), uid)
	assert.True(t, f.svc.generator.Check(f.admin, tok))

	snap := f.metrics.Snapshot(ctx)
	assert.Equal(t, int64(1), snap[metrics.ResetRequests])
	assert.Equal(t, int64(1), snap[metrics.EmailsSent])
}

func TestRequestResetUnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.NewTestUser(t, f.repo, "staffer", "password1", testutil.Staff())
	testutil.NewTestUser(t, f.repo, "retired", "password1", testutil.Superuser(), testutil.Inactive())

	for _, addr := range []string{"nobody@example.com", "staffer@example.com", "retired@example.com"} {
		assert.NoError(t, f.svc.RequestReset(ctx, addr), addr)
	}
	assert.Empty(t, f.sender.msgs)
}

func TestRequestResetMissingEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.RequestReset(ctx, "   "), ErrEmailRequired)
	assert.Equal(t, int64(1), f.metrics.Snapshot(ctx)[metrics.ResetFailures])
}

func TestRequestResetMailFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sender.err = errors.New("535 5.7.8 authentication failed")

	err := f.svc.RequestReset(ctx, "root.admin@example.com")
	assert.ErrorIs(t, err, ErrMailDelivery)

	snap := f.metrics.Snapshot(ctx)
	assert.Equal(t, int64(1), snap[metrics.ResetFailures])
	assert.Equal(t, int64(0), snap[metrics.EmailsSent])
}

func TestConfirmReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.RequestReset(ctx, "root.admin@example.com"))
	uid, tok := f.linkParts(t)

	require.NoError(t, f.svc.ConfirmReset(ctx, uid, tok, "brand-new-pass", "brand-new-pass"))
	assert.True(t, f.passwordIs(t, "brand-new-pass"))
	assert.Equal(t, int64(1), f.metrics.Snapshot(ctx)[metrics.ResetSuccess])

	// The password change invalidates the link.
	err := f.svc.ConfirmReset(ctx, uid, tok, "another-pass", "another-pass")
	assert.ErrorIs(t, err, ErrInvalidLink)
	assert.True(t, f.passwordIs(t, "brand-new-pass"))
}

func TestConfirmResetFieldErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uid := EncodeUID(f.admin.ID)
	tok := f.svc.generator.Make(f.admin)

	assert.ErrorIs(t, f.svc.ConfirmReset(ctx, uid, tok, "", "something"), ErrPasswordsRequired)
	assert.ErrorIs(t, f.svc.ConfirmReset(ctx, uid, tok, "something1", "something2"), ErrPasswordMismatch)
	assert.ErrorIs(t, f.svc.ConfirmReset(ctx, uid, tok, "short", "short"), ErrPasswordTooShort)
	assert.True(t, f.passwordIs(t, "old-password"))
}

func TestConfirmResetInvalidLinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := testutil.NewTestUser(t, f.repo, "second", "second-pass", testutil.Superuser())
	tok := f.svc.generator.Make(f.admin)

	tests := []struct {
		name string
		uid  string
		tok  string
	}{
		{"undecodable uid", "%%%", tok},
		{"non numeric uid", EncodeUID(0), tok},
		{"unknown user", EncodeUID(9999), tok},
		{"token for a different user", EncodeUID(other.ID), tok},
		{"garbage token", EncodeUID(f.admin.ID), "zzz-deadbeef"},
		{"empty token", EncodeUID(f.admin.ID), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ConfirmReset(ctx, tt.uid, tt.tok, "brand-new-pass", "brand-new-pass")
			assert.ErrorIs(t, err, ErrInvalidLink)
		})
	}
	assert.True(t, f.passwordIs(t, "old-password"))
}

func TestRequestOTP(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.RequestOTP(ctx, "Root.Admin@example.com"))
	code, ok, err := f.store.Get(ctx, otpKeyPrefix+"root.admin@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, `^\d{6}$`, code)
	assert.Contains(t, f.sender.last(t).Text, code)

	// A second request replaces the first code.
	require.NoError(t, f.svc.RequestOTP(ctx, "root.admin@example.com"))
	second, _, err := f.store.Get(ctx, otpKeyPrefix+"root.admin@example.com")
	require.NoError(t, err)
	assert.Contains(t, f.sender.last(t).Text, second)
	assert.Equal(t, 2, len(f.sender.msgs))

	snap := f.metrics.Snapshot(ctx)
	assert.Equal(t, int64(2), snap[metrics.OTPRequests])
	assert.Equal(t, int64(2), snap[metrics.EmailsSent])
}

func TestRequestOTPUnknownAndMailFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.RequestOTP(ctx, "nobody@example.com"))
	_, ok, _ := f.store.Get(ctx, otpKeyPrefix+"nobody@example.com")
	assert.False(t, ok)
	assert.Empty(t, f.sender.msgs)

	f.sender.err = errors.New("dial tcp: connection refused")
	assert.NoError(t, f.svc.RequestOTP(ctx, "root.admin@example.com"))

	assert.ErrorIs(t, f.svc.RequestOTP(ctx, ""), ErrEmailRequired)
}

func TestConfirmOTP(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.RequestOTP(ctx, "root.admin@example.com"))
	code, _, err := f.store.Get(ctx, otpKeyPrefix+"root.admin@example.com")
	require.NoError(t, err)

	pair, err := f.svc.ConfirmOTP(ctx, "root.admin@example.com", code, "brand-new-pass")
	require.NoError(t, err)
	claims, err := f.tokens.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, claims.UserID)
	assert.True(t, f.passwordIs(t, "brand-new-pass"))

	// No replay.
	_, err = f.svc.ConfirmOTP(ctx, "root.admin@example.com", code, "third-password")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.True(t, f.passwordIs(t, "brand-new-pass"))

	snap := f.metrics.Snapshot(ctx)
	assert.Equal(t, int64(1), snap[metrics.OTPVerifications])
	assert.Equal(t, int64(1), snap[metrics.ResetSuccess])
	assert.Equal(t, int64(1), snap[metrics.OTPFailures])
}

func TestConfirmOTPFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, otpKeyPrefix+"root.admin@example.com", "123456", time.Minute))

	_, err := f.svc.ConfirmOTP(ctx, "root.admin@example.com", "", "brand-new-pass")
	assert.ErrorIs(t, err, ErrOTPFieldsRequired)
	_, err = f.svc.ConfirmOTP(ctx, "root.admin@example.com", "123456", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	_, err = f.svc.ConfirmOTP(ctx, "root.admin@example.com", "000000", "brand-new-pass")
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = f.svc.ConfirmOTP(ctx, "other@example.com", "123456", "brand-new-pass")
	assert.ErrorIs(t, err, ErrInvalidCode)

	// The code is still valid after failed attempts.
	_, ok, _ := f.store.Get(ctx, otpKeyPrefix+"root.admin@example.com")
	assert.True(t, ok)
	assert.Equal(t, int64(4), f.metrics.Snapshot(ctx)[metrics.OTPFailures])
}

func TestConfirmOTPUserGone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, otpKeyPrefix+"root.admin@example.com", "123456", time.Minute))
	require.NoError(t, f.repo.DeleteUser(ctx, f.admin.ID))

	_, err := f.svc.ConfirmOTP(ctx, "root.admin@example.com", "123456", "brand-new-pass")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConfirmOTPConcurrentConsumers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, otpKeyPrefix+"root.admin@example.com", "654321", time.Minute))

	const workers = 4
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ConfirmOTP(ctx, "root.admin@example.com", "654321", "brand-new-pass")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrInvalidCode)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestGenerateCode(t *testing.T) {
	for range 20 {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
