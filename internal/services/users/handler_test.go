package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
)

type fakeStore struct {
	usuarios []models.Usuario
	hashes   map[string]string
}

func (f *fakeStore) List(context.Context) ([]models.Usuario, error) {
	return f.usuarios, nil
}

func (f *fakeStore) Get(_ context.Context, id int) (*models.Usuario, error) {
	for _, u := range f.usuarios {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrUsuarioNotFound
}

func (f *fakeStore) Create(_ context.Context, req *models.CreateUsuarioRequest, hash string) (*models.Usuario, error) {
	for _, u := range f.usuarios {
		if u.Email == req.Email {
			return nil, ErrEmailTaken
		}
	}
	u := models.Usuario{ID: len(f.usuarios) + 1, Nombre: req.Nombre, Email: req.Email, Rol: req.Rol, Activo: true}
	f.usuarios = append(f.usuarios, u)
	if f.hashes == nil {
		f.hashes = map[string]string{}
	}
	f.hashes[req.Email] = hash
	return &u, nil
}

func newRouter(store Store) http.Handler {
	svc := NewService(store, logger.Nop())
	svc.cost = bcrypt.MinCost

	r := chi.NewRouter()
	r.Route("/api/usuarios", NewHandler(svc, logger.Nop()).Routes)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestCreateUsuario_HashesPassword(t *testing.T) {
	store := &fakeStore{}
	router := newRouter(store)

	rec := do(router, http.MethodPost, "/api/usuarios",
		`{"nombre":"Lucía","email":"lucia@quinta.pe","password":"secreto1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got models.Usuario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.RolMesero, got.Rol)
	assert.NotContains(t, rec.Body.String(), "password")

	hash := store.hashes["lucia@quinta.pe"]
	assert.NotEqual(t, "secreto1", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secreto1")))
}

func TestCreateUsuario_Errors(t *testing.T) {
	store := &fakeStore{usuarios: []models.Usuario{{ID: 1, Email: "ana@quinta.pe"}}}
	router := newRouter(store)

	rec := do(router, http.MethodPost, "/api/usuarios", `{"nombre":"Ana","email":"ana@quinta.pe","password":"secreto1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, http.MethodPost, "/api/usuarios", `{"nombre":"Ana","email":"not-an-email","password":"secreto1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/usuarios", `{"nombre":"Ana","email":"b@quinta.pe","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	long := strings.Repeat("p", 80)
	rec = do(router, http.MethodPost, "/api/usuarios", `{"nombre":"Ana","email":"c@quinta.pe","password":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")
}

func TestGetUsuario(t *testing.T) {
	router := newRouter(&fakeStore{usuarios: []models.Usuario{{ID: 1, Nombre: "Ana", Rol: models.RolAdmin}}})

	rec := do(router, http.MethodGet, "/api/usuarios/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nombre":"Ana"`)

	rec = do(router, http.MethodGet, "/api/usuarios/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Usuario no encontrado")

	rec = do(router, http.MethodGet, "/api/usuarios/uno", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/api/usuarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Usuario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
