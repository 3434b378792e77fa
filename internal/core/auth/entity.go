package auth

// Credential はログイン用の資格情報です。パスワードは平文で保持されます。
type Credential struct {
	Username string
	Password string
}

// 初期状態で登録されている管理者アカウントです。
const (
	SeedUsername = "admin"
	SeedPassword = "121314"
)
