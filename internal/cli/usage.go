package cli

const usage = `Usage:
  phpext [options] <file-or-directory>...

Lists the PHP extensions the given sources depend on, one per line.
Extensions that are always present are marked "(builtin)".

Options:
  --suffix LIST        Comma-separated suffixes for files found in directories (e.g. .php,.inc)
  --exclude LIST       Comma-separated glob patterns for files found in directories
  --gitignore          Skip files ignored by a walked directory's .gitignore
  --php-version X.Y    PHP version for the builtin table (default: 8.3)
  --catalog LIST       Extra catalog files (YAML, TOML or JSON) layered over the embedded one
  --format text|json   Output format (default: text)
  --jobs N             Parallel file workers (default: 1)
  --cache-dir PATH     Per-file result cache directory
  --config PATH        Config file (default: .phpext.yml, .phpext.yaml, .phpext.toml or phpext.json)
  -v, --verbose        Debug logging on stderr
  -h, --help           Show this help text

Explicitly named files are always scanned; --suffix, --exclude and
--gitignore only filter files found by walking a directory.
`

func Usage() string {
	return usage
}
