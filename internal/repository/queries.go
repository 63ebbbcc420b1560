package repository

func upsertUserQuery(u User) (string, []any) {
	// NULLIF + COALESCE keep an already stored display name when the incoming one is
	// empty. Same for the picture URL. The email is always refreshed because the
	// provider may rotate relay addresses.
	return `INSERT INTO users (provider, subject, email, display_name, picture_url)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (provider, subject) DO UPDATE SET
	email = EXCLUDED.email,
	display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
	picture_url = COALESCE(NULLIF(EXCLUDED.picture_url, ''), users.picture_url),
	updated_at = now()`, []any{u.Provider, u.Subject, u.Email, u.DisplayName, u.PictureURL}
}

func getUserByEmailQuery(email string) (string, []any) {
	return `SELECT id, provider, subject, email, display_name, picture_url, created_at, updated_at
FROM users WHERE email = $1`, []any{email}
}
