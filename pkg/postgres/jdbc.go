package postgres

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// JDBCPrefix is the scheme every PostgreSQL JDBC URL starts with.
const JDBCPrefix = "jdbc:postgresql://"

// DefaultPort is used for hosts without an explicit port.
const DefaultPort = 5432

// ErrInvalidJDBCURL is returned for URLs that do not follow
// jdbc:postgresql://host[:port][,host[:port]]/database[?params].
var ErrInvalidJDBCURL = errors.New("postgres: invalid jdbc url")

// Host is one entry of the JDBC host list.
type Host struct {
	Name string
	Port int
}

func (h Host) String() string {
	return net.JoinHostPort(h.Name, strconv.Itoa(h.Port))
}

// JDBCURL is a parsed PostgreSQL JDBC URL.
type JDBCURL struct {
	Hosts    []Host
	Database string
	Params   url.Values
}

// jdbcParams maps the JDBC driver properties that have a libpq equivalent.
var jdbcParams = map[string]string{
	"sslmode":          "sslmode",
	"connectTimeout":   "connect_timeout",
	"ApplicationName":  "application_name",
	"currentSchema":    "search_path",
	"targetServerType": "target_session_attrs",
}

// ParseJDBCURL parses raw into its hosts, database and properties.
func ParseJDBCURL(raw string) (JDBCURL, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, JDBCPrefix) {
		return JDBCURL{}, fmt.Errorf("%w: expected %s prefix", ErrInvalidJDBCURL, JDBCPrefix)
	}
	rest := strings.TrimPrefix(trimmed, JDBCPrefix)

	var query string
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		rest, query = rest[:idx], rest[idx+1:]
	}
	authority, database, found := strings.Cut(rest, "/")
	if !found || strings.TrimSpace(database) == "" {
		return JDBCURL{}, fmt.Errorf("%w: database is required", ErrInvalidJDBCURL)
	}
	if strings.Contains(database, "/") {
		return JDBCURL{}, fmt.Errorf("%w: unexpected path %q", ErrInvalidJDBCURL, database)
	}
	db, err := url.PathUnescape(database)
	if err != nil {
		return JDBCURL{}, fmt.Errorf("%w: %v", ErrInvalidJDBCURL, err)
	}

	out := JDBCURL{Database: db, Params: url.Values{}}
	for _, entry := range strings.Split(authority, ",") {
		host, err := parseHost(strings.TrimSpace(entry))
		if err != nil {
			return JDBCURL{}, err
		}
		out.Hosts = append(out.Hosts, host)
	}

	if query != "" {
		params, err := url.ParseQuery(query)
		if err != nil {
			return JDBCURL{}, fmt.Errorf("%w: %v", ErrInvalidJDBCURL, err)
		}
		out.Params = params
	}
	return out, nil
}

func parseHost(entry string) (Host, error) {
	if entry == "" {
		return Host{}, fmt.Errorf("%w: host is required", ErrInvalidJDBCURL)
	}
	name, portText := entry, ""
	if strings.HasPrefix(entry, "[") || strings.Count(entry, ":") == 1 {
		h, p, err := net.SplitHostPort(entry)
		if err != nil {
			if strings.HasPrefix(entry, "[") && strings.HasSuffix(entry, "]") {
				h, p = strings.Trim(entry, "[]"), ""
			} else {
				return Host{}, fmt.Errorf("%w: %v", ErrInvalidJDBCURL, err)
			}
		}
		name, portText = h, p
	}
	port := DefaultPort
	if portText != "" {
		n, err := strconv.Atoi(portText)
		if err != nil || n <= 0 || n > 65535 {
			return Host{}, fmt.Errorf("%w: invalid port %q", ErrInvalidJDBCURL, portText)
		}
		port = n
	}
	if name == "" {
		return Host{}, fmt.Errorf("%w: host is required", ErrInvalidJDBCURL)
	}
	return Host{Name: name, Port: port}, nil
}

// DSN renders a pgx connection URL with the given credentials. JDBC
// properties without a libpq equivalent are dropped; ssl=true becomes
// sslmode=require unless sslmode is set.
func (j JDBCURL) DSN(username, password string) string {
	hosts := make([]string, 0, len(j.Hosts))
	for _, h := range j.Hosts {
		hosts = append(hosts, h.String())
	}

	query := url.Values{}
	for key, values := range j.Params {
		if mapped, ok := jdbcParams[key]; ok && len(values) > 0 {
			query.Set(mapped, values[len(values)-1])
		}
	}
	if query.Get("sslmode") == "" && strings.EqualFold(j.Params.Get("ssl"), "true") {
		query.Set("sslmode", "require")
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     strings.Join(hosts, ","),
		Path:     "/" + j.Database,
		RawQuery: query.Encode(),
	}
	if username != "" {
		u.User = url.UserPassword(username, password)
	}
	return u.String()
}

// String renders the URL back into JDBC form.
func (j JDBCURL) String() string {
	hosts := make([]string, 0, len(j.Hosts))
	for _, h := range j.Hosts {
		hosts = append(hosts, h.String())
	}
	out := JDBCPrefix + strings.Join(hosts, ",") + "/" + url.PathEscape(j.Database)
	if len(j.Params) > 0 {
		out += "?" + j.Params.Encode()
	}
	return out
}
