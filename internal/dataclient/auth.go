package dataclient

import (
	"net/http"
	"net/url"

	"campusnest/pkg/domain"
)

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp registers a new credential pair and returns the new user ID.
func (c *Client) SignUp(email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp struct {
		ID   string    `json:"id"`
		User *authUser `json:"user"`
	}
	if _, err := c.do(http.MethodPost, "/auth/v1/signup", "", nil, nil, payload, &resp); err != nil {
		return "", err
	}
	// The user object is nested when the signup response includes a session.
	id := resp.ID
	if id == "" && resp.User != nil {
		id = resp.User.ID
	}
	if id == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "signup response missing user id"}
	}
	return id, nil
}

// PasswordLogin exchanges credentials for an access token and identity.
func (c *Client) PasswordLogin(email, password string) (domain.Principal, error) {
	payload := map[string]string{"email": email, "password": password}
	query := url.Values{"grant_type": []string{"password"}}
	var resp struct {
		AccessToken string   `json:"access_token"`
		User        authUser `json:"user"`
	}
	if _, err := c.do(http.MethodPost, "/auth/v1/token", "", query, nil, payload, &resp); err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{
		ID:          resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
	}, nil
}

// UpdateUserPassword sets a new password for the bearer of the access token.
func (c *Client) UpdateUserPassword(accessToken, newPassword string) error {
	payload := map[string]string{"password": newPassword}
	_, err := c.do(http.MethodPut, "/auth/v1/user", accessToken, nil, nil, payload, nil)
	return err
}
