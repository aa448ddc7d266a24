package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func serveWith(t *testing.T, mw func(http.Handler) http.Handler, p *Principal) *httptest.ResponseRecorder {
	t.Helper()
	called := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/assets", nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), *p))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code == http.StatusNoContent {
		require.True(t, called)
	} else {
		require.False(t, called, "handler must not run when access is denied")
	}
	return rr
}

func TestRequireAllWithoutPrincipal(t *testing.T) {
	rr := serveWith(t, Middleware{}.RequireAll(CapAssetCreate), nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestRequireAllViewerForbidden(t *testing.T) {
	rr := serveWith(t, Middleware{}.RequireAll(CapAssetCreate), &Principal{UserID: 2, Role: RoleViewer})
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireAllAdminAllowed(t *testing.T) {
	rr := serveWith(t, Middleware{}.RequireAll(CapAssetCreate, CapAssetView), &Principal{UserID: 1, Role: RoleAdmin})
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequireAnyViewerAllowed(t *testing.T) {
	rr := serveWith(t, Middleware{}.RequireAny(CapAssetCreate, CapAssetView), &Principal{UserID: 2, Role: RoleViewer})
	require.Equal(t, http.StatusNoContent, rr.Code)
}
