package server

import (
	"net/http"
	"testing"

	"bankisha/internal/domain"
)

func TestSystemSettingsRequiresKey(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "u1", domain.RoleUser)
	rec := env.do(t, http.MethodGet, "/api/admin/system-settings", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSystemSettingsRestrictedKey(t *testing.T) {
	env := newTestEnv(t)

	user := env.login(t, "u1", domain.RoleUser)
	rec := env.do(t, http.MethodGet, "/api/admin/system-settings?key=appDirection", nil, user)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user read: status = %d, want 403", rec.Code)
	}

	admin := env.login(t, "a1", domain.RoleAdmin)
	rec = env.do(t, http.MethodGet, "/api/admin/system-settings?key=appDirection", nil, admin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin read: status = %d, want 403", rec.Code)
	}

	root := env.login(t, "root", domain.RoleSuperAdmin)
	rec = env.do(t, http.MethodGet, "/api/admin/system-settings?key=appDirection", nil, root)
	if rec.Code != http.StatusOK {
		t.Fatalf("superAdmin read: status = %d body=%s", rec.Code, rec.Body.String())
	}
	if body := decodeResponse(t, rec); len(body) != 0 {
		t.Fatalf("unwritten key body = %v, want empty object", body)
	}
}

func TestSystemSettingsWriteIsSuperAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]any{"key": "uiConfig", "data": map[string]any{"theme": "dark"}}

	admin := env.login(t, "a1", domain.RoleAdmin)
	rec := env.do(t, http.MethodPost, "/api/admin/system-settings", payload, admin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin write: status = %d, want 403", rec.Code)
	}
	if _, ok, _ := env.store.GetSystemSetting("uiConfig"); ok {
		t.Fatal("setting written behind a 403")
	}

	root := env.login(t, "root", domain.RoleSuperAdmin)
	rec = env.do(t, http.MethodPost, "/api/admin/system-settings", payload, root)
	if rec.Code != http.StatusOK {
		t.Fatalf("superAdmin write: status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSystemSettingsPartialMerge(t *testing.T) {
	env := newTestEnv(t)
	root := env.login(t, "root", domain.RoleSuperAdmin)

	first := map[string]any{"key": "uiConfig", "data": map[string]any{"theme": "dark", "lang": "ja"}}
	if rec := env.do(t, http.MethodPost, "/api/admin/system-settings", first, root); rec.Code != http.StatusOK {
		t.Fatalf("first write: status = %d", rec.Code)
	}
	second := map[string]any{"key": "uiConfig", "data": map[string]any{"lang": "en"}}
	if rec := env.do(t, http.MethodPost, "/api/admin/system-settings", second, root); rec.Code != http.StatusOK {
		t.Fatalf("second write: status = %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/admin/system-settings?key=uiConfig", nil, root)
	body := decodeResponse(t, rec)
	if body["theme"] != "dark" || body["lang"] != "en" {
		t.Fatalf("merged data = %v", body)
	}
}
