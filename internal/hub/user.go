package hub

// User is the editor identity the catalog is evaluated for.
type User struct {
	ID                           string
	Name                         string
	CanCreateRestricted          bool
	CanInstallRecommended        bool
	CanUpdateAndInstallLibraries bool
}

// MirrorUser returns the identity the mirror runs as: allowed to install
// every content type the hub offers.
func MirrorUser() User {
	return User{
		ID:                           "1",
		CanCreateRestricted:          true,
		CanInstallRecommended:        true,
		CanUpdateAndInstallLibraries: true,
	}
}

// canInstall applies the user's permissions to a content type.
func (u User) canInstall(ct ContentType) bool {
	if ct.Restricted && !u.CanCreateRestricted {
		return false
	}
	if u.CanUpdateAndInstallLibraries {
		return true
	}
	return ct.IsRecommended && u.CanInstallRecommended
}
