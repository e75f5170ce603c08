package httpserver

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/zrwaldrip/IS403-Pokemon/internal/catalog"
	"github.com/zrwaldrip/IS403-Pokemon/internal/users"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type loginView struct {
	ErrMessage string
}

type indexView struct {
	Pokemon    []catalog.Pokemon
	ErrMessage string
	Username   string
	UserLevel  int
}

type searchResultView struct {
	Pokemon catalog.Pokemon
}

type editPokemonView struct {
	Pokemon    catalog.Pokemon
	ErrMessage string
}

type addUserView struct {
	ErrMessage string
}

type usersView struct {
	Users      []users.User
	UserLevel  int
	ErrMessage string
}

type editUserView struct {
	User users.User
}

func (h *handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("render template", "template", name, "error", err)
	}
}
