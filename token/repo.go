package token

// Repositories persist issued tokens. GetByValue returns (nil, nil)
// when no token has the given value. CleanExpired removes every token
// whose expiry has passed and returns the number removed.

type AccessTokenRepo interface {
	Save(token *AccessToken) error
	GetByValue(value string) (*AccessToken, error)
	ExistsByValue(value string) (bool, error)
	Delete(value string) error
	CleanExpired() (int64, error)
}

type RefreshTokenRepo interface {
	Save(token *RefreshToken) error
	GetByValue(value string) (*RefreshToken, error)
	ExistsByValue(value string) (bool, error)
	Delete(value string) error
	CleanExpired() (int64, error)
}

type AuthorizationCodeRepo interface {
	Save(code *AuthorizationCode) error
	GetByValue(value string) (*AuthorizationCode, error)
	ExistsByValue(value string) (bool, error)
	Delete(value string) error
	CleanExpired() (int64, error)
}
