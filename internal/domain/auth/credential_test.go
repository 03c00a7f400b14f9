package auth

import (
	"sync"
	"testing"
)

func TestLoginStoresFullCredential(t *testing.T) {
	s := NewStore()

	user := &User{ID: "u-1", Email: "a@x.com", FullName: "Ann"}
	s.Login("access-1", "refresh-1", user)

	if !s.IsAuthenticated() {
		t.Error("expected authenticated after login")
	}
	if got := s.AccessToken(); got != "access-1" {
		t.Errorf("access token = %q, want access-1", got)
	}
	if got := s.RefreshToken(); got != "refresh-1" {
		t.Errorf("refresh token = %q, want refresh-1", got)
	}
	if got := s.User(); got == nil || got.Email != "a@x.com" {
		t.Errorf("user = %+v, want a@x.com", got)
	}
}

func TestSetTokensPreservesRefreshWhenEmpty(t *testing.T) {
	s := NewStore()
	s.Login("access-1", "refresh-1", &User{ID: "u-1"})

	s.SetTokens("access-2", "")

	if got := s.AccessToken(); got != "access-2" {
		t.Errorf("access token = %q, want access-2", got)
	}
	if got := s.RefreshToken(); got != "refresh-1" {
		t.Errorf("refresh token = %q, want refresh-1 (preserved)", got)
	}

	s.SetTokens("access-3", "refresh-3")
	if got := s.RefreshToken(); got != "refresh-3" {
		t.Errorf("refresh token = %q, want refresh-3 (rotated)", got)
	}
}

func TestSetUserDoesNotTouchTokens(t *testing.T) {
	s := NewStore()
	s.Login("access-1", "refresh-1", &User{ID: "u-1", DisplayName: "old"})

	s.SetUser(&User{ID: "u-1", DisplayName: "new"})

	if got := s.AccessToken(); got != "access-1" {
		t.Errorf("access token = %q, want access-1", got)
	}
	if got := s.User().DisplayName; got != "new" {
		t.Errorf("display name = %q, want new", got)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	s := NewStore()
	s.Login("access-1", "refresh-1", &User{ID: "u-1"})

	s.Logout()

	if s.IsAuthenticated() {
		t.Error("expected not authenticated after logout")
	}
	if s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Error("expected empty tokens after logout")
	}
	if s.User() != nil {
		t.Error("expected nil user after logout")
	}
}

func TestOnChangeFiresWithSnapshot(t *testing.T) {
	var mu sync.Mutex
	var seen []Credential
	s := NewStore(WithOnChange(func(c Credential) {
		mu.Lock()
		seen = append(seen, c)
		mu.Unlock()
	}))

	s.Login("a1", "r1", &User{ID: "u-1"})
	s.SetTokens("a2", "")
	s.Logout()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("hook fired %d times, want 3", len(seen))
	}
	if seen[0].AccessToken != "a1" || !seen[0].Authenticated {
		t.Errorf("first snapshot = %+v", seen[0])
	}
	if seen[1].AccessToken != "a2" || seen[1].RefreshToken != "r1" {
		t.Errorf("second snapshot = %+v", seen[1])
	}
	if seen[2].Authenticated || seen[2].AccessToken != "" {
		t.Errorf("third snapshot = %+v", seen[2])
	}
}

func TestRestoreDoesNotFireHook(t *testing.T) {
	fired := 0
	s := NewStore(WithOnChange(func(Credential) { fired++ }))

	s.Restore(Credential{AccessToken: "a1", RefreshToken: "r1", Authenticated: true})

	if fired != 0 {
		t.Errorf("hook fired %d times on Restore, want 0", fired)
	}
	if !s.IsAuthenticated() || s.AccessToken() != "a1" {
		t.Error("restored state not visible")
	}
}

func TestConcurrentReadersSeeConsistentSnapshot(t *testing.T) {
	s := NewStore()
	s.Login("a1", "r1", &User{ID: "u-1"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := s.Snapshot()
				if snap.Authenticated && snap.AccessToken == "" {
					t.Error("authenticated snapshot with empty token")
					return
				}
			}
		}()
	}
	for j := 0; j < 200; j++ {
		s.SetTokens("a2", "r2")
		s.Logout()
		s.Login("a1", "r1", &User{ID: "u-1"})
	}
	wg.Wait()
}
