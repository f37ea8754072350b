package repositories

// SettingRepository defines the interface for named operational flags, most
// notably the consumed marker of the rank-5 bootstrap. Get reports absence via
// the ok result rather than an error: a missing flag is the normal initial
// state, not a failure.
type SettingRepository interface {
	Get(name string) (value string, ok bool, err error)
	Set(name, value string) error
}
