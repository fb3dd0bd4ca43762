package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusmarket/market-client/internal/auth"
	"github.com/campusmarket/market-client/internal/room"
)

// staticCreds is a CredentialSource with a fixed token.
type staticCreds struct {
	creds auth.Credentials
	err   error
}

func (s staticCreds) Load(context.Context) (auth.Credentials, error) {
	return s.creds, s.err
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:     srv.URL,
		Credentials: staticCreds{creds: auth.Credentials{Token: "tok-test", Email: "me@x", UserID: 7}},
	})
}

func TestLoginSendsFormAndParsesResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("username"); got != "me@x" {
			t.Errorf("username = %q, want %q", got, "me@x")
		}
		if got := r.FormValue("password"); got != "hunter2" {
			t.Errorf("password field missing or wrong: %q", got)
		}
		io.WriteString(w, `{"access_token":"tok-new","token_type":"bearer","user_id":7,"user_email":"me@x","is_admin":true}`)
	}))

	result, err := client.Login(context.Background(), "me@x", "hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if result.AccessToken != "tok-new" || result.UserID != 7 || !result.IsAdmin || result.UserEmail != "me@x" {
		t.Errorf("Login() = %+v", result)
	}
}

func TestAuthorizedRequestCarriesBearerAndRequestID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-test" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}
		io.WriteString(w, `{"id":7,"email":"me@x","nickname":"Me","is_admin":false}`)
	}))

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	if user.ID != 7 || user.Nickname != "Me" {
		t.Errorf("Me() = %+v", user)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Could not validate credentials"}`)
	}))

	_, err := client.ChatHistory(context.Background(), room.New(5, 7))
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Detail != "Could not validate credentials" {
		t.Errorf("detail not preserved: %v", err)
	}
}

func TestMissingCredentialsFailBeforeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached backend without stored credentials")
	}))
	defer srv.Close()

	client := New(Config{
		BaseURL:     srv.URL,
		Credentials: staticCreds{err: auth.ErrNoCredentials},
	})
	if _, err := client.Me(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Item not found"}`)
	}))

	if _, err := client.GetItem(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestValidationErrorsFlattenToFieldLines(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":[
			{"loc":["body","email"],"msg":"value is not a valid email address"},
			{"loc":["body","password"],"msg":"ensure this value has at most 64 characters"}
		]}`)
	}))

	err := client.Register(context.Background(), "nope", strings.Repeat("x", 100), "nick")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}

	lines := verr.Lines()
	want := []string{
		"email: value is not a valid email address",
		"password: ensure this value has at most 64 characters",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestListItemsQueryParameters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("skip") != "16" || q.Get("limit") != "8" {
			t.Errorf("pagination params = skip %q limit %q", q.Get("skip"), q.Get("limit"))
		}
		if q.Get("search") != "bike" || q.Get("category") != "sports" {
			t.Errorf("filter params = search %q category %q", q.Get("search"), q.Get("category"))
		}
		if q.Get("owner_id") != "7" {
			t.Errorf("owner_id = %q", q.Get("owner_id"))
		}
		io.WriteString(w, `[{"id":1,"title":"bike","price":30,"category":"sports","status":"on_sale","owner_id":7}]`)
	}))

	items, err := client.ListItems(context.Background(), ListOptions{
		Skip: 16, Limit: 8, Search: "bike", Category: "sports", OwnerID: 7,
	})
	if err != nil {
		t.Fatalf("ListItems() error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "bike" {
		t.Errorf("ListItems() = %+v", items)
	}
}

func TestCreateItemMultipart(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("title") != "desk lamp" || r.FormValue("price") != "12.5" {
			t.Errorf("fields = title %q price %q", r.FormValue("title"), r.FormValue("price"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "lamp.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "fake-jpeg-bytes" {
			t.Errorf("file content = %q", data)
		}
		io.WriteString(w, `{"id":3,"title":"desk lamp","price":12.5,"category":"home","status":"on_sale","owner_id":7}`)
	}))

	item, err := client.CreateItem(context.Background(), NewItem{
		Title:     "desk lamp",
		Price:     12.5,
		Category:  "home",
		ImageName: "lamp.jpg",
		Image:     strings.NewReader("fake-jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("CreateItem() error: %v", err)
	}
	if item.ID != 3 {
		t.Errorf("CreateItem() = %+v", item)
	}
}

func TestUpdateItemStatusForm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/items/5/status" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("status"); got != "sold" {
			t.Errorf("status = %q, want sold", got)
		}
		io.WriteString(w, `{}`)
	}))

	if err := client.UpdateItemStatus(context.Background(), 5, StatusSold); err != nil {
		t.Fatalf("UpdateItemStatus() error: %v", err)
	}

	if err := client.UpdateItemStatus(context.Background(), 5, "burned"); err == nil {
		t.Error("invalid status accepted")
	}
}

func TestDeleteItemNoContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/items/9" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeleteItem(context.Background(), 9); err != nil {
		t.Fatalf("DeleteItem() error: %v", err)
	}
}

func TestChatHistoryPathAndDecode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/5-7" {
			t.Errorf("path = %q, want /chat/5-7", r.URL.Path)
		}
		io.WriteString(w, `[{"sender":"a@x","content":"hello"},{"sender":"b@x","content":"hi"}]`)
	}))

	msgs, err := client.ChatHistory(context.Background(), room.New(5, 7))
	if err != nil {
		t.Fatalf("ChatHistory() error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "hello" || msgs[1].Sender != "b@x" {
		t.Errorf("ChatHistory() = %+v", msgs)
	}
}

func TestConversationsDecode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/chats" {
			t.Errorf("path = %q", r.URL.Path)
		}
		io.WriteString(w, `[{"room_id":"5-7","item_id":5,"item_title":"bike","counterpart_nickname":"Sam","role":"buyer","unread_count":2}]`)
	}))

	convs, err := client.Conversations(context.Background())
	if err != nil {
		t.Fatalf("Conversations() error: %v", err)
	}
	if len(convs) != 1 || convs[0].RoomID != "5-7" || convs[0].UnreadCount != 2 {
		t.Errorf("Conversations() = %+v", convs)
	}
}

func TestToggledStatus(t *testing.T) {
	if got := (Item{Status: StatusOnSale}).ToggledStatus(); got != StatusSold {
		t.Errorf("on_sale toggles to %q, want sold", got)
	}
	if got := (Item{Status: StatusSold}).ToggledStatus(); got != StatusOnSale {
		t.Errorf("sold toggles to %q, want on_sale", got)
	}
}
