// Package config loads whisker's TOML configuration.
//
// Load reads ~/.config/whisker/config.toml unless another path is given. A
// missing file yields Default(); empty or missing keys keep their default.
// Paths accept a leading ~. The result is always validated, and Validate
// reports the first bad value with a "config:" prefixed error.
//
// Keys:
//
//	api_base             TheCatAPI root (https://api.thecatapi.com/v1)
//	api_key              optional x-api-key; WHISKER_API_KEY fills it when empty
//	page_size            images per list request, 1..100 (10)
//	request_timeout      per-request bound, Go duration (15s)
//	image_cache_entries  picture cache entry bound (64)
//	image_cache_mb       picture cache byte bound in MiB (64)
//	refresh_schedule     optional cron spec for automatic list refresh
//	log_file             ~/.local/state/whisker/whisker.log
//	log_level            trace, debug, info, warn, error, disabled (info)
//	favorites_backend    file or redis (file)
//	favorites_path       ~/.local/share/whisker/favorites.toml
//	redis_addr, redis_password, redis_db, redis_key
package config
