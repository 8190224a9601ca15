package graphql

import (
	"errors"

	"blog-backend/internal/apperr"
	"blog-backend/internal/middleware"
	"blog-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/graphql-go/graphql"
)

func (r *Root) resolveCreateUser(p graphql.ResolveParams) (interface{}, error) {
	input, ok := p.Args["userInput"].(map[string]interface{})
	if !ok {
		return nil, apperr.NewValidation("Invalid input", apperr.FieldError{
			Message: "userInput is required",
			Param:   "userInput",
		})
	}
	email, _ := input["email"].(string)
	name, _ := input["name"].(string)
	password, _ := input["password"].(string)

	userID, err := r.auth.Signup(p.Context, email, name, password)
	if err != nil {
		return nil, err
	}

	return r.auth.User(p.Context, userID)
}

func (r *Root) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	in := credentialsInput{Email: email, Password: password}
	if err := validate.Struct(in); err != nil {
		return nil, asValidation("Invalid data", err)
	}

	token, userID, err := r.auth.Login(p.Context, email, password)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"token":  token,
		"userId": userID,
	}, nil
}

func (r *Root) resolvePosts(p graphql.ResolveParams) (interface{}, error) {
	if err := checkAuth(p.Context); err != nil {
		return nil, err
	}

	page, _ := p.Args["page"].(int)
	posts, total, err := r.feed.ListByCreator(p.Context, middleware.UserID(p.Context), page)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"posts":      posts,
		"totalPosts": int(total),
	}, nil
}

func (r *Root) resolvePost(p graphql.ResolveParams) (interface{}, error) {
	if err := checkAuth(p.Context); err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	return r.feed.Get(p.Context, id)
}

func (r *Root) resolveUser(p graphql.ResolveParams) (interface{}, error) {
	if err := checkAuth(p.Context); err != nil {
		return nil, err
	}
	return r.auth.User(p.Context, middleware.UserID(p.Context))
}

func (r *Root) resolveCreatePost(p graphql.ResolveParams) (interface{}, error) {
	if err := checkAuth(p.Context); err != nil {
		return nil, err
	}

	input, ok := p.Args["postInput"].(map[string]interface{})
	if !ok {
		return nil, apperr.NewValidation("Invalid data", apperr.FieldError{
			Message: "postInput is required",
			Param:   "postInput",
		})
	}
	title, _ := input["title"].(string)
	content, _ := input["content"].(string)
	imageURL, _ := input["imageUrl"].(string)

	if err := validate.Struct(postInput{Title: title, Content: content}); err != nil {
		return nil, asValidation("Invalid data", err)
	}

	post, _, err := r.feed.Create(p.Context, middleware.UserID(p.Context), title, content, imageURL)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *Root) resolveUpdatePost(p graphql.ResolveParams) (interface{}, error) {
	if err := checkAuth(p.Context); err != nil {
		return nil, err
	}

	id, _ := p.Args["id"].(string)
	input, _ := p.Args["postInput"].(map[string]interface{})
	title, _ := input["title"].(string)
	content, _ := input["content"].(string)
	imageURL, _ := input["imageUrl"].(string)
	// Web clients send the literal string "undefined" when no new image was
	// picked; treat it as keeping the stored one.
	if imageURL == "undefined" {
		imageURL = ""
	}

	if err := validate.Struct(postInput{Title: title, Content: content}); err != nil {
		return nil, asValidation("Invalid data", err)
	}

	return r.feed.Update(p.Context, middleware.UserID(p.Context), id, title, content, imageURL)
}

func (r *Root) resolveDeletePost(p graphql.ResolveParams) (interface{}, error) {
	if err := checkAuth(p.Context); err != nil {
		return nil, err
	}

	id, _ := p.Args["id"].(string)
	if err := r.feed.Delete(p.Context, middleware.UserID(p.Context), id); err != nil {
		return nil, err
	}
	return "Post deleted successfully", nil
}

func (r *Root) resolveUpdateStatus(p graphql.ResolveParams) (interface{}, error) {
	if err := checkAuth(p.Context); err != nil {
		return nil, err
	}

	status, _ := p.Args["status"].(string)
	userID := middleware.UserID(p.Context)
	if err := r.auth.UpdateStatus(p.Context, userID, status); err != nil {
		return nil, err
	}
	return r.auth.User(p.Context, userID)
}

func (r *Root) resolvePostCreator(p graphql.ResolveParams) (interface{}, error) {
	post := p.Source.(*models.Post)
	return r.auth.User(p.Context, post.Creator.Hex())
}

func (r *Root) resolveUserPosts(p graphql.ResolveParams) (interface{}, error) {
	user := p.Source.(*models.User)
	posts := make([]*models.Post, 0, len(user.Posts))
	for _, id := range user.Posts {
		post, err := r.feed.Get(p.Context, id.Hex())
		if err != nil {
			// Dangling references are possible; skip them.
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// asValidation converts validator failures into the taxonomy shape used by
// the GraphQL error formatter.
func asValidation(message string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewInternal("Error while validating input", err)
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "email":
			fields = append(fields, apperr.FieldError{Message: "Email is invalid", Param: fe.Field()})
		case "min":
			fields = append(fields, apperr.FieldError{
				Message: fe.Field() + " should be at least " + fe.Param() + " characters long",
				Param:   fe.Field(),
			})
		default:
			fields = append(fields, apperr.FieldError{Message: fe.Field() + " is required", Param: fe.Field()})
		}
	}
	return apperr.NewValidation(message, fields...)
}
