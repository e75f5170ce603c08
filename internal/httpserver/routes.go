package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zrwaldrip/IS403-Pokemon/internal/catalog"
	"github.com/zrwaldrip/IS403-Pokemon/internal/session"
	"github.com/zrwaldrip/IS403-Pokemon/internal/users"
)

type handler struct {
	deps Deps
	log  *slog.Logger
}

func NewHandler(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	h := &handler{deps: deps, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	r.HandleFunc("/", h.home).Methods("GET")
	r.HandleFunc("/login", h.login).Methods("POST")
	r.HandleFunc("/logout", h.logout).Methods("GET")

	r.HandleFunc("/searchPokemon", h.searchPokemon).Methods("GET")
	r.HandleFunc("/editPokemon/{id:[0-9]+}", h.editPokemonForm).Methods("GET")
	r.HandleFunc("/editPokemon/{id:[0-9]+}", h.editPokemon).Methods("POST")
	r.HandleFunc("/deletePokemon/{id:[0-9]+}", h.deletePokemon).Methods("POST")

	r.HandleFunc("/addUser", h.addUserForm).Methods("GET")
	r.HandleFunc("/addUser", h.addUser).Methods("POST")
	r.HandleFunc("/displayUsers", h.displayUsers).Methods("GET")
	r.HandleFunc("/editUser/{id:[0-9]+}", h.editUserForm).Methods("GET")
	r.HandleFunc("/editUser/{id:[0-9]+}", h.editUser).Methods("POST")
	r.HandleFunc("/deleteUser/{id:[0-9]+}", h.deleteUser).Methods("POST")

	return r
}

// requireLogin redirects anonymous requests to the home route, which
// renders the login form. Only the session flag is authoritative.
func (h *handler) requireLogin(w http.ResponseWriter, r *http.Request) (session.State, bool) {
	sess := h.deps.Sessions.Current(r)
	if !sess.IsLoggedIn {
		http.Redirect(w, r, "/", http.StatusFound)
		return session.State{}, false
	}
	return sess, true
}

func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	sess := h.deps.Sessions.Current(r)
	if !sess.IsLoggedIn {
		h.render(w, http.StatusOK, "login.html", loginView{})
		return
	}
	h.renderIndex(w, http.StatusOK, sess, "")
}

// renderIndex shows the full catalog list with an optional message.
func (h *handler) renderIndex(w http.ResponseWriter, status int, sess session.State, errMessage string) {
	list, err := h.deps.Catalog.List()
	if err != nil {
		h.log.Error("list pokemon", "error", err)
		h.render(w, http.StatusInternalServerError, "index.html", indexView{
			ErrMessage: "An error occurred while loading the pokemon",
			Username:   sess.Username,
			UserLevel:  sess.Level,
		})
		return
	}
	h.render(w, status, "index.html", indexView{
		Pokemon:    list,
		ErrMessage: errMessage,
		Username:   sess.Username,
		UserLevel:  sess.Level,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	u, err := h.deps.Users.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.audit(username, "auth.login", "", "failed", "invalid credentials")
			h.render(w, http.StatusUnauthorized, "login.html", loginView{ErrMessage: "Invalid Credentials"})
			return
		}
		h.log.Error("authenticate user", "error", err)
		h.audit(username, "auth.login", "", "failed", "database error")
		h.render(w, http.StatusInternalServerError, "login.html", loginView{ErrMessage: "An error occurred while logging in"})
		return
	}

	if err := h.deps.Sessions.Login(w, r, u.Username, u.Level); err != nil {
		h.log.Error("create session", "error", err)
		h.render(w, http.StatusInternalServerError, "login.html", loginView{ErrMessage: "An error occurred while logging in"})
		return
	}
	h.audit(u.Username, "auth.login", "", "success", "")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := h.deps.Sessions.Current(r)
	if err := h.deps.Sessions.Logout(w, r); err != nil {
		h.log.Error("logout session", "error", err)
	}
	h.audit(sess.Username, "auth.logout", "", "success", "")
	h.render(w, http.StatusOK, "login.html", loginView{ErrMessage: "Please log in"})
}

func (h *handler) searchPokemon(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("pokemon")
	p, err := h.deps.Catalog.SearchByDescription(name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.renderIndex(w, http.StatusOK, sess, fmt.Sprintf("Cannot find %s", name))
			return
		}
		h.log.Error("search pokemon", "name", name, "error", err)
		h.renderIndex(w, http.StatusOK, sess, "An error occurred while searching for the pokemon")
		return
	}
	h.render(w, http.StatusOK, "search_result.html", searchResultView{Pokemon: p})
}

func (h *handler) editPokemonForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id := pathID(r)
	p, err := h.deps.Catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.renderIndex(w, http.StatusNotFound, sess, "Cannot find that pokemon")
			return
		}
		h.log.Error("get pokemon", "id", id, "error", err)
		h.renderIndex(w, http.StatusInternalServerError, sess, "An error occurred while loading the pokemon")
		return
	}
	h.render(w, http.StatusOK, "edit_pokemon.html", editPokemonView{Pokemon: p})
}

func (h *handler) editPokemon(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id := pathID(r)
	description := r.FormValue("description")
	baseTotal, err := strconv.Atoi(r.FormValue("base_total"))
	if err != nil {
		h.render(w, http.StatusBadRequest, "edit_pokemon.html", editPokemonView{
			Pokemon:    catalog.Pokemon{ID: id, Description: description},
			ErrMessage: "Error updating pokemon",
		})
		return
	}

	if err := h.deps.Catalog.Update(id, description, baseTotal); err != nil {
		h.log.Error("update pokemon", "id", id, "error", err)
		h.audit(sess.Username, "pokemon.update", strconv.Itoa(id), "failed", err.Error())
		h.render(w, http.StatusInternalServerError, "edit_pokemon.html", editPokemonView{
			Pokemon:    catalog.Pokemon{ID: id, Description: description, BaseTotal: baseTotal},
			ErrMessage: "Error updating pokemon",
		})
		return
	}
	h.audit(sess.Username, "pokemon.update", strconv.Itoa(id), "success", "")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) deletePokemon(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id := pathID(r)
	if err := h.deps.Catalog.Delete(id); err != nil {
		h.log.Error("delete pokemon", "id", id, "error", err)
		h.audit(sess.Username, "pokemon.delete", strconv.Itoa(id), "failed", err.Error())
		h.renderIndex(w, http.StatusOK, sess, "Error deleting the pokemon")
		return
	}
	h.audit(sess.Username, "pokemon.delete", strconv.Itoa(id), "success", "")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) addUserForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireLogin(w, r); !ok {
		return
	}
	h.render(w, http.StatusOK, "add_user.html", addUserView{})
}

func (h *handler) addUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	level, err := strconv.Atoi(r.FormValue("level"))
	if err != nil {
		level = 1
	}

	if err := h.deps.Users.Create(username, password, level); err != nil {
		h.log.Error("create user", "username", username, "error", err)
		h.audit(sess.Username, "user.create", username, "failed", err.Error())
		h.render(w, http.StatusInternalServerError, "add_user.html", addUserView{ErrMessage: "Unable to add user."})
		return
	}
	h.audit(sess.Username, "user.create", username, "success", "")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) displayUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	list, err := h.deps.Users.List()
	if err != nil {
		h.log.Error("list users", "error", err)
		http.Error(w, "Error fetching users", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "users.html", usersView{Users: list, UserLevel: sess.Level})
}

// renderUsers re-fetches the user list so error pages never show an empty
// table when rows still exist.
func (h *handler) renderUsers(w http.ResponseWriter, status int, sess session.State, errMessage string) {
	list, err := h.deps.Users.List()
	if err != nil {
		h.log.Error("list users", "error", err)
		list = nil
	}
	h.render(w, status, "users.html", usersView{Users: list, UserLevel: sess.Level, ErrMessage: errMessage})
}

func (h *handler) editUserForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id := pathID(r)
	u, err := h.deps.Users.Get(id)
	if err != nil {
		h.log.Error("get user", "id", id, "error", err)
		h.renderUsers(w, http.StatusInternalServerError, sess, "Unable to edit user")
		return
	}
	h.render(w, http.StatusOK, "edit_user.html", editUserView{User: u})
}

func (h *handler) editUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id := pathID(r)
	username := r.FormValue("username")
	password := r.FormValue("password")

	if err := h.deps.Users.Update(id, username, password); err != nil {
		h.log.Error("update user", "id", id, "error", err)
		h.audit(sess.Username, "user.update", strconv.Itoa(id), "failed", err.Error())
		h.renderUsers(w, http.StatusInternalServerError, sess, "Unable to update user.")
		return
	}
	h.audit(sess.Username, "user.update", strconv.Itoa(id), "success", "")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id := pathID(r)
	if err := h.deps.Users.Delete(id); err != nil {
		h.log.Error("delete user", "id", id, "error", err)
		h.audit(sess.Username, "user.delete", strconv.Itoa(id), "failed", err.Error())
		h.renderUsers(w, http.StatusInternalServerError, sess, "Unable to delete the user.")
		return
	}
	h.audit(sess.Username, "user.delete", strconv.Itoa(id), "success", "")
	http.Redirect(w, r, "/", http.StatusFound)
}

func pathID(r *http.Request) int {
	// The route pattern constrains {id} to digits.
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func (h *handler) audit(actor, action, target, outcome, detail string) {
	if h.deps.Audit == nil {
		return
	}
	_ = h.deps.Audit.Log(actor, action, target, outcome, detail)
}
