package oauth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/state"
	"github.com/courtside-hq/courtside/internal/domain/auth"
)

type fakeProvider struct {
	loginResp    *rest.ProviderLoginResponse
	loginErr     error
	callbackErr  error
	gotCode      string
	gotState     string
	exchanges    int
	profileToken string
}

func (f *fakeProvider) ProviderLogin(ctx context.Context) (*rest.ProviderLoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeProvider) ProviderCallback(ctx context.Context, code, state string) (*rest.TokenResponse, error) {
	f.exchanges++
	f.gotCode, f.gotState = code, state
	if f.callbackErr != nil {
		return nil, f.callbackErr
	}
	return &rest.TokenResponse{AccessToken: "access-new", RefreshToken: "refresh-new"}, nil
}

func (f *fakeProvider) MeWithToken(ctx context.Context, token string) (*auth.User, error) {
	f.profileToken = token
	return &auth.User{ID: "u-1", Email: "line@x.com", FullName: "Line User"}, nil
}

func newFlowFixture(t *testing.T, provider *fakeProvider) (*Flow, *state.CredentialStore, *auth.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := state.NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"), logger)
	creds := auth.NewStore()
	return NewFlow(provider, store, creds, logger), store, creds
}

func TestFlow_BeginPersistsServerState(t *testing.T) {
	provider := &fakeProvider{loginResp: &rest.ProviderLoginResponse{
		LoginURL: "https://provider.example/authorize?client_id=abc&state=srv-state",
		State:    "srv-state",
	}}
	flow, store, _ := newFlowFixture(t, provider)

	loginURL, err := flow.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if loginURL != provider.loginResp.LoginURL {
		t.Errorf("login url = %q, server url should pass through unchanged", loginURL)
	}

	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.OAuthState != "srv-state" {
		t.Errorf("stored state = %q, want srv-state", st.OAuthState)
	}
}

func TestFlow_BeginGeneratesStateWhenServerOmitsIt(t *testing.T) {
	provider := &fakeProvider{loginResp: &rest.ProviderLoginResponse{
		LoginURL: "https://provider.example/authorize?client_id=abc",
	}}
	flow, store, _ := newFlowFixture(t, provider)

	loginURL, err := flow.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	st, _ := store.Load()
	if st.OAuthState == "" {
		t.Fatal("no state was generated")
	}
	u, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("parse login url: %v", err)
	}
	if got := u.Query().Get("state"); got != st.OAuthState {
		t.Errorf("url state = %q, stored = %q, must match", got, st.OAuthState)
	}
}

func TestFlow_CompleteWithRedirectURL(t *testing.T) {
	provider := &fakeProvider{loginResp: &rest.ProviderLoginResponse{
		LoginURL: "https://provider.example/authorize",
		State:    "st-1",
	}}
	flow, store, creds := newFlowFixture(t, provider)

	if _, err := flow.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	user, err := flow.Complete(context.Background(),
		"https://app.example/auth/line/callback?code=code-9&state=st-1")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if user.ID != "u-1" {
		t.Errorf("user = %+v", user)
	}
	if provider.gotCode != "code-9" || provider.gotState != "st-1" {
		t.Errorf("exchange got code=%q state=%q", provider.gotCode, provider.gotState)
	}
	if provider.profileToken != "access-new" {
		t.Errorf("profile fetched with %q, want the fresh access token", provider.profileToken)
	}
	if creds.AccessToken() != "access-new" || creds.RefreshToken() != "refresh-new" {
		t.Errorf("credentials = %q/%q", creds.AccessToken(), creds.RefreshToken())
	}

	// State is one-time.
	st, _ := store.Load()
	if st.OAuthState != "" {
		t.Errorf("state %q survived completion, want cleared", st.OAuthState)
	}
	if _, err := flow.Complete(context.Background(), "code-9"); !errors.Is(err, ErrNoPendingLogin) {
		t.Errorf("second Complete err = %v, want ErrNoPendingLogin", err)
	}
}

func TestFlow_CompleteWithBareCode(t *testing.T) {
	provider := &fakeProvider{loginResp: &rest.ProviderLoginResponse{
		LoginURL: "https://provider.example/authorize", State: "st-2",
	}}
	flow, _, _ := newFlowFixture(t, provider)

	if _, err := flow.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := flow.Complete(context.Background(), "  bare-code \n"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if provider.gotCode != "bare-code" || provider.gotState != "st-2" {
		t.Errorf("exchange got code=%q state=%q", provider.gotCode, provider.gotState)
	}
}

func TestFlow_StateMismatchAbortsBeforeExchange(t *testing.T) {
	provider := &fakeProvider{loginResp: &rest.ProviderLoginResponse{
		LoginURL: "https://provider.example/authorize", State: "st-3",
	}}
	flow, store, creds := newFlowFixture(t, provider)

	if _, err := flow.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	_, err := flow.Complete(context.Background(),
		"https://app.example/cb?code=code-1&state=forged")
	if !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("err = %v, want ErrStateMismatch", err)
	}
	if provider.exchanges != 0 {
		t.Errorf("exchange ran %d times despite mismatch, want 0", provider.exchanges)
	}
	if creds.IsAuthenticated() {
		t.Error("credentials committed despite mismatch")
	}

	// Even a failed attempt consumes the state.
	st, _ := store.Load()
	if st.OAuthState != "" {
		t.Errorf("state %q survived a failed attempt, want cleared", st.OAuthState)
	}
}

func TestFlow_CompleteWithoutBegin(t *testing.T) {
	flow, _, _ := newFlowFixture(t, &fakeProvider{})
	if _, err := flow.Complete(context.Background(), "code"); !errors.Is(err, ErrNoPendingLogin) {
		t.Errorf("err = %v, want ErrNoPendingLogin", err)
	}
}

func TestParsePasted(t *testing.T) {
	cases := []struct {
		in        string
		wantCode  string
		wantState string
		wantErr   bool
	}{
		{"plain-code", "plain-code", "", false},
		{"https://x/cb?code=c1&state=s1", "c1", "s1", false},
		{"https://x/cb?state=s1", "", "", true},
		{"", "", "", true},
		{"   \n", "", "", true},
	}
	for _, tc := range cases {
		code, returned, err := parsePasted(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parsePasted(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if code != tc.wantCode || returned != tc.wantState {
			t.Errorf("parsePasted(%q) = %q/%q, want %q/%q",
				tc.in, code, returned, tc.wantCode, tc.wantState)
		}
	}
}
