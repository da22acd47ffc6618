package auth

type Operation string

const (
	OpListMovies    Operation = "list_movies"
	OpGetMovie      Operation = "get_movie"
	OpCreateMovie   Operation = "create_movie"
	OpDeleteMovie   Operation = "delete_movie"
	OpAddComment    Operation = "add_comment"
	OpGetUserExtras Operation = "get_user_extras"
	OpSetUserExtras Operation = "set_user_extras"
)

// Policy maps an operation to the roles that may perform it. Operations with
// no roles are public.
type Policy map[Operation]Roles

// DefaultPolicy is the route policy of the movies API.
func DefaultPolicy() Policy {
	return Policy{
		OpListMovies:    nil,
		OpGetMovie:      nil,
		OpCreateMovie:   NewRoles(RoleMoviesManager),
		OpDeleteMovie:   NewRoles(RoleMoviesManager),
		OpAddComment:    NewRoles(RoleMoviesManager, RoleUser),
		OpGetUserExtras: NewRoles(RoleMoviesAdmin, RoleMoviesUser),
		OpSetUserExtras: NewRoles(RoleMoviesAdmin, RoleMoviesUser),
	}
}

func (p Policy) Public(op Operation) bool {
	return len(p[op]) == 0
}
