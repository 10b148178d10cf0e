package victim

import (
	"os/user"
	"strconv"
)

// defaultResolveUsername wraps os/user.LookupId, the production
// UsernameFunc used when Options.ResolveUsername is nil.
func defaultResolveUsername(uid int) (string, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
