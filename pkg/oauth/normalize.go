package oauth

import (
	"encoding/json"
	"strings"
)

// Normalize maps the given provider-specific claims into the canonical UserInfo
// record.
//
// Missing optional fields (email, name, picture) are never an error. A missing
// subject identifier is, because without it the user cannot be identified at all;
// that case is reported as a malformed-claims ProviderError.
func Normalize(provider string, claims RawClaims) (UserInfo, error) {
	user := UserInfo{Provider: provider, Raw: claims}

	switch provider {
	case ProviderMicrosoft:
		// The directory object ID is the stable identifier on the Microsoft identity
		// platform. The "sub" claim is pairwise per client, so "oid" is preferred.
		user.Subject = claims.GetString("oid")
		if user.Subject == "" {
			user.Subject = claims.GetString("sub")
		}
		user.Email = claims.GetString("email")
		if user.Email == "" {
			// Directory accounts often carry the email only as the preferred username.
			if pu := claims.GetString("preferred_username"); strings.Contains(pu, "@") {
				user.Email = pu
			}
		}
		user.DisplayName = claims.GetString("name")

	case ProviderGoogle:
		user.Subject = claims.GetString("sub")
		user.Email = claims.GetString("email")
		user.DisplayName = claims.GetString("name")
		if user.DisplayName == "" {
			user.DisplayName = joinNonEmpty(claims.GetString("given_name"), claims.GetString("family_name"))
		}
		user.PictureURL = claims.GetString("picture")

	case ProviderApple:
		user.Subject = claims.GetString("sub")
		// May be a private relay address if the user chose to hide their email.
		user.Email = claims.GetString("email")
		// The name, when present at all, arrives only in the one-time "user" payload
		// of the very first authorization. See MergeUserPayload.
		user.DisplayName = appleNameFromUserPayload(claims.GetString("user"))

	default:
		return UserInfo{}, &ProviderError{Provider: provider, Category: CategoryMalformedClaims}
	}

	if user.Subject == "" {
		return UserInfo{}, &ProviderError{Provider: provider, Category: CategoryMalformedClaims}
	}

	return user, nil
}

// appleUserPayload is the schema of Apple's one-time "user" form field.
//
// Source: https://developer.apple.com/documentation/sign_in_with_apple/request_an_authorization_to_the_sign_in_with_apple_server
type appleUserPayload struct {
	Name struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
	Email string `json:"email"`
}

// appleNameFromUserPayload extracts the display name from Apple's "user" payload.
// An absent or malformed payload yields an empty name, not an error, because the
// payload only ever exists on the first authorization.
func appleNameFromUserPayload(payload string) string {
	if payload == "" {
		return ""
	}

	var user appleUserPayload
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return ""
	}

	return joinNonEmpty(user.Name.FirstName, user.Name.LastName)
}

// joinNonEmpty joins the given parts with single spaces, skipping empty ones.
func joinNonEmpty(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}
