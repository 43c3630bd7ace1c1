package queries

const (
	listQuery   = `SELECT id, name FROM addresses WHERE user_id = $1 ORDER BY id`
	insertQuery = `INSERT INTO addresses (user_id, name) VALUES ($1, $2)`
	countQuery  = `SELECT COUNT(*) FROM addresses`
	usersQuery  = `SELECT id FROM users WHERE email = $1`
	dropQuery   = `DROP TABLE IF EXISTS addresses`

	leakyList   = `SELECT id, name FROM addresses ORDER BY id` // want "query on addresses is not filtered by user_id"
	leakyUpdate = "UPDATE addresses SET name = $1 WHERE id = $2"  // want "query on addresses is not filtered by user_id"
)

func leakyDelete() string {
	return "delete from Addresses where id = $1" // want "query on addresses is not filtered by user_id"
}

func unrelated() string {
	return "addresses from the list"
}
