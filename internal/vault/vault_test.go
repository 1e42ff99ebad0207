package vault

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func fakeClient(calls *int32, data map[string]any, err error) *Client {
	return newClient(nil, func(_ context.Context, mount, rel string) (map[string]any, error) {
		atomic.AddInt32(calls, 1)
		if mount != "kv" || rel != "forecast/app" {
			return nil, errors.New("unexpected path " + mount + "/" + rel)
		}
		return data, err
	})
}

func TestReadSecret_StringifiesAndCaches(t *testing.T) {
	var calls int32
	c := fakeClient(&calls, map[string]any{"AppSettings:SomeKey": "Admin", "AppSettings:SmtpPort": 25}, nil)

	for i := 0; i < 3; i++ {
		kv, err := c.ReadSecret(context.Background(), "kv/forecast/app", time.Minute)
		if err != nil {
			t.Fatalf("ReadSecret: %v", err)
		}
		if kv["AppSettings:SmtpPort"] != "25" || kv["AppSettings:SomeKey"] != "Admin" {
			t.Fatalf("kv = %v", kv)
		}
		kv["AppSettings:SomeKey"] = "mutated" // must not leak into the cache
	}
	if calls != 1 {
		t.Fatalf("backend calls = %d, want 1", calls)
	}
}

func TestReadSecret_NoTTLAlwaysReads(t *testing.T) {
	var calls int32
	c := fakeClient(&calls, map[string]any{"k": "v"}, nil)
	for i := 0; i < 2; i++ {
		if _, err := c.ReadSecret(context.Background(), "kv/forecast/app", 0); err != nil {
			t.Fatalf("ReadSecret: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("backend calls = %d, want 2", calls)
	}
}

func TestReadSecret_ConcurrentMissesShareOneRead(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c := newClient(nil, func(context.Context, string, string) (map[string]any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return map[string]any{"k": "v"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.ReadSecret(context.Background(), "kv/forecast/app", time.Minute); err != nil {
				t.Errorf("ReadSecret: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n < 1 || n > 8 {
		t.Fatalf("backend calls = %d", n)
	}
}

func TestReadSecret_Errors(t *testing.T) {
	var calls int32
	c := fakeClient(&calls, nil, errors.New("sealed"))
	if _, err := c.ReadSecret(context.Background(), "kv/forecast/app", time.Minute); err == nil {
		t.Fatalf("expected backend error")
	}
	if _, err := c.ReadSecret(context.Background(), "", time.Minute); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestSplitMount(t *testing.T) {
	cases := map[string][2]string{
		"kv/forecast/app": {"kv", "forecast/app"},
		"kv":              {"kv", ""},
		"":                {"", ""},
	}
	for in, want := range cases {
		m, r := splitMount(in)
		if m != want[0] || r != want[1] {
			t.Errorf("splitMount(%q) = %q, %q", in, m, r)
		}
	}
}
