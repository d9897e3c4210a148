// Package config loads runtime configuration for the ProLens client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected with -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//  4. Credentials file (see parseCredentials) selected with -e or the
//     "credentials_file" JSON field; it carries the cloud and AI secrets.
//
// Supported flags
//
//	-d string   data directory (database file lives here)
//	-db string  database file name inside the data directory
//	-x string   export directory for bundles and the launcher
//	-l string   log level: debug, info, warn, error
//	-v          shorthand for -l debug
//	-m string   address for the /metrics listener (empty disables it)
//	-s int      material cache size (entries)
//	-r int      cloud subscription retry delay (seconds)
//	-u string   URL embedded in the generated launcher
//	-e string   credentials file (dotenv format)
//
// # JSON schema
//
//	{
//	  "data_dir": "prolens-data",
//	  "subscription_retry": "5s",
//	  "s3_bucket": "prolens",
//	  "ai_model": "gpt-4o-mini"
//	}
//
// The package never reads process environment variables; secrets come from
// the credentials file only.
package config
