package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"blog-backend/internal/apperr"
	"blog-backend/internal/middleware"
	"blog-backend/internal/repository/memory"
	"blog-backend/internal/services"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string              `json:"message"`
		Data       []apperr.FieldError `json:"data"`
		StatusCode int                 `json:"statusCode"`
	} `json:"errors"`
}

type gqlFixture struct {
	handler http.Handler
	auth    *services.AuthService
}

func newGQLFixture(t *testing.T) *gqlFixture {
	t.Helper()
	users := memory.NewUsers()
	posts := memory.NewPosts()
	images := memory.NewImages()
	auth := services.NewAuthService(users, "test-secret")
	feed := services.NewFeedService(posts, users, images)

	// The GraphQL surface sits behind the soft gate.
	handler := middleware.Annotate(auth)(NewHandler(auth, feed))
	return &gqlFixture{handler: handler, auth: auth}
}

func (f *gqlFixture) do(t *testing.T, query string, token string) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		t.Fatalf("encode query: %v", err)
	}
	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("graphql status = %d %s", rr.Code, rr.Body.String())
	}

	var resp gqlResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func (f *gqlFixture) signup(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	userID, err := f.auth.Signup(context.Background(), email, "Tester", password)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, _, err = f.auth.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return token, userID
}

func TestCreateUserMutation(t *testing.T) {
	f := newGQLFixture(t)

	resp := f.do(t, `mutation { createUser(userInput:{email:"a@x.com",name:"A",password:"pass1"}) { _id email status } }`, "")
	if len(resp.Errors) != 0 {
		t.Fatalf("errors = %+v", resp.Errors)
	}
	var user struct {
		ID     string `json:"_id"`
		Email  string `json:"email"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data["createUser"], &user); err != nil {
		t.Fatalf("decode createUser: %v", err)
	}
	if user.Email != "a@x.com" || user.Status != "I am new!" || user.ID == "" {
		t.Fatalf("createUser = %+v", user)
	}
}

func TestCreateUserValidation(t *testing.T) {
	f := newGQLFixture(t)

	resp := f.do(t, `mutation { createUser(userInput:{email:"bad",name:"A",password:"x"}) { _id } }`, "")
	if len(resp.Errors) == 0 {
		t.Fatal("want validation errors")
	}
	if resp.Errors[0].StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("statusCode = %d, want 422", resp.Errors[0].StatusCode)
	}
	if len(resp.Errors[0].Data) == 0 {
		t.Fatal("validation error should carry field detail")
	}
}

func TestLoginQuery(t *testing.T) {
	f := newGQLFixture(t)
	_, userID := f.signup(t, "a@x.com", "pass1")

	resp := f.do(t, `{ login(email:"a@x.com",password:"pass1") { token userId } }`, "")
	if len(resp.Errors) != 0 {
		t.Fatalf("errors = %+v", resp.Errors)
	}
	var auth struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(resp.Data["login"], &auth); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if auth.Token == "" || auth.UserID != userID {
		t.Fatalf("login = %+v, want token and userId %q", auth, userID)
	}

	t.Run("wrong password", func(t *testing.T) {
		resp := f.do(t, `{ login(email:"a@x.com",password:"wrong") { token userId } }`, "")
		if len(resp.Errors) == 0 || resp.Errors[0].StatusCode != http.StatusUnauthorized {
			t.Fatalf("errors = %+v, want 401", resp.Errors)
		}
	})
}

func TestSoftGateRejectsInResolver(t *testing.T) {
	f := newGQLFixture(t)

	tests := []struct {
		name  string
		query string
	}{
		{"posts", `{ posts { totalPosts } }`},
		{"user", `{ user { _id } }`},
		{"createPost", `mutation { createPost(postInput:{title:"Title",content:"Content",imageUrl:"images/x.png"}) { _id } }`},
		{"updateStatus", `mutation { updateStatus(status:"hi") { _id } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, tt.query, "")
			if len(resp.Errors) == 0 {
				t.Fatal("want an unauthorized error")
			}
			if resp.Errors[0].StatusCode != http.StatusUnauthorized {
				t.Fatalf("statusCode = %d, want 401", resp.Errors[0].StatusCode)
			}
		})
	}

	t.Run("unparseable token also proceeds to resolver rejection", func(t *testing.T) {
		resp := f.do(t, `{ user { _id } }`, "garbage")
		if len(resp.Errors) == 0 || resp.Errors[0].StatusCode != http.StatusUnauthorized {
			t.Fatalf("errors = %+v, want 401", resp.Errors)
		}
	})
}

func TestCreatePostMutation(t *testing.T) {
	f := newGQLFixture(t)
	token, userID := f.signup(t, "a@x.com", "pass1")

	resp := f.do(t, `mutation { createPost(postInput:{title:"Title",content:"Content body",imageUrl:"images/f.png"}) { _id title imageUrl creator { _id } } }`, token)
	if len(resp.Errors) != 0 {
		t.Fatalf("errors = %+v", resp.Errors)
	}
	var post struct {
		ID       string `json:"_id"`
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
		Creator  struct {
			ID string `json:"_id"`
		} `json:"creator"`
	}
	if err := json.Unmarshal(resp.Data["createPost"], &post); err != nil {
		t.Fatalf("decode createPost: %v", err)
	}
	if post.Creator.ID != userID {
		t.Fatalf("creator = %q, want %q", post.Creator.ID, userID)
	}

	t.Run("short fields are validation failures", func(t *testing.T) {
		resp := f.do(t, `mutation { createPost(postInput:{title:"Hi",content:"No",imageUrl:"images/f.png"}) { _id } }`, token)
		if len(resp.Errors) == 0 || resp.Errors[0].StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("errors = %+v, want 422", resp.Errors)
		}
	})
}

func TestPostsQueryPagination(t *testing.T) {
	f := newGQLFixture(t)
	token, _ := f.signup(t, "a@x.com", "pass1")
	otherToken, _ := f.signup(t, "b@x.com", "pass2")

	for i := 1; i <= 5; i++ {
		query := fmt.Sprintf(`mutation { createPost(postInput:{title:"Title %d",content:"Content body",imageUrl:"images/%d.png"}) { _id } }`, i, i)
		if resp := f.do(t, query, token); len(resp.Errors) != 0 {
			t.Fatalf("create %d: %+v", i, resp.Errors)
		}
	}
	// Another user's post must not leak into the creator-scoped feed.
	if resp := f.do(t, `mutation { createPost(postInput:{title:"Other post",content:"Content body",imageUrl:"images/o.png"}) { _id } }`, otherToken); len(resp.Errors) != 0 {
		t.Fatalf("create other: %+v", resp.Errors)
	}

	resp := f.do(t, `{ posts(page:2) { totalPosts posts { title } } }`, token)
	if len(resp.Errors) != 0 {
		t.Fatalf("errors = %+v", resp.Errors)
	}
	var data struct {
		TotalPosts int `json:"totalPosts"`
		Posts      []struct {
			Title string `json:"title"`
		} `json:"posts"`
	}
	if err := json.Unmarshal(resp.Data["posts"], &data); err != nil {
		t.Fatalf("decode posts: %v", err)
	}
	if data.TotalPosts != 5 {
		t.Fatalf("totalPosts = %d, want 5 scoped to the caller", data.TotalPosts)
	}
	if len(data.Posts) != 2 {
		t.Fatalf("page 2 size = %d, want 2", len(data.Posts))
	}
}

func TestDeletePostMutation(t *testing.T) {
	f := newGQLFixture(t)
	token, _ := f.signup(t, "a@x.com", "pass1")
	otherToken, _ := f.signup(t, "b@x.com", "pass2")

	resp := f.do(t, `mutation { createPost(postInput:{title:"Title",content:"Content body",imageUrl:"images/f.png"}) { _id } }`, token)
	if len(resp.Errors) != 0 {
		t.Fatalf("create: %+v", resp.Errors)
	}
	var post struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(resp.Data["createPost"], &post); err != nil {
		t.Fatalf("decode: %v", err)
	}

	t.Run("non-owner is forbidden", func(t *testing.T) {
		resp := f.do(t, fmt.Sprintf(`mutation { deletePost(id:%q) }`, post.ID), otherToken)
		if len(resp.Errors) == 0 || resp.Errors[0].StatusCode != http.StatusForbidden {
			t.Fatalf("errors = %+v, want 403", resp.Errors)
		}
	})

	t.Run("missing post is not found", func(t *testing.T) {
		resp := f.do(t, `mutation { deletePost(id:"ffffffffffffffffffffffff") }`, otherToken)
		if len(resp.Errors) == 0 || resp.Errors[0].StatusCode != http.StatusNotFound {
			t.Fatalf("errors = %+v, want 404", resp.Errors)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		resp := f.do(t, fmt.Sprintf(`mutation { deletePost(id:%q) }`, post.ID), token)
		if len(resp.Errors) != 0 {
			t.Fatalf("errors = %+v", resp.Errors)
		}
	})
}

func TestUpdateStatusMutation(t *testing.T) {
	f := newGQLFixture(t)
	token, _ := f.signup(t, "a@x.com", "pass1")

	resp := f.do(t, `mutation { updateStatus(status:"Shipping") { status } }`, token)
	if len(resp.Errors) != 0 {
		t.Fatalf("errors = %+v", resp.Errors)
	}
	var user struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data["updateStatus"], &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.Status != "Shipping" {
		t.Fatalf("status = %q, want updated", user.Status)
	}
}
