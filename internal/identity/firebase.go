package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initialises the Firebase Admin SDK. With no
// credentials file it falls back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify checks the token's signature, audience, and expiry.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return firebaseClaims(tok), nil
}

func firebaseClaims(tok *fbauth.Token) *Claims {
	c := &Claims{UserID: tok.UID}
	c.Email, _ = tok.Claims["email"].(string)
	c.Picture, _ = tok.Claims["picture"].(string)
	name, _ := tok.Claims["name"].(string)
	c.FirstName, c.LastName = splitName(name)
	return c
}
