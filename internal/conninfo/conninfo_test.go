package conninfo

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// parseConninfo reverses Build's quoting for round-trip checks.
func parseConninfo(s string) (map[string]string, error) {
	params := map[string]string{}
	rest := s
	for rest != "" {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			break
		}
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return nil, fmt.Errorf("missing = in %q", rest)
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value strings.Builder
		if strings.HasPrefix(rest, "'") {
			rest = rest[1:]
			for {
				if rest == "" {
					return nil, fmt.Errorf("unterminated quote")
				}
				if rest[0] == '\\' && len(rest) > 1 {
					value.WriteByte(rest[1])
					rest = rest[2:]
					continue
				}
				if rest[0] == '\'' {
					rest = rest[1:]
					break
				}
				value.WriteByte(rest[0])
				rest = rest[1:]
			}
		} else {
			end := strings.IndexAny(rest, " ")
			if end < 0 {
				end = len(rest)
			}
			value.WriteString(rest[:end])
			rest = rest[end:]
		}
		params[key] = value.String()
	}
	return params, nil
}

func TestQuote(t *testing.T) {
	Convey("Given conninfo values to quote", t, func() {
		Convey("An empty value becomes ''", func() {
			So(Quote(""), ShouldEqual, "''")
		})

		Convey("A value without whitespace is returned verbatim", func() {
			So(Quote("localhost"), ShouldEqual, "localhost")
			So(Quote("it's"), ShouldEqual, "it's")
			So(Quote(`back\slash`), ShouldEqual, `back\slash`)
		})

		Convey("A value with whitespace is single-quoted", func() {
			So(Quote("two words"), ShouldEqual, "'two words'")
			So(Quote("tab\there"), ShouldEqual, "'tab\there'")
		})

		Convey("Quotes and backslashes are escaped inside the quoted form", func() {
			So(Quote("it's a host"), ShouldEqual, `'it\'s a host'`)
			So(Quote(`a \ b`), ShouldEqual, `'a \\ b'`)
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given discrete connection parameters", t, func() {
		Convey("A dbname containing = is returned unchanged", func() {
			dsn := "host=pg1 user=backup dbname=postgres"
			So(Build("ignored", "5433", "nobody", dsn), ShouldEqual, dsn)
		})

		Convey("An empty dbname is returned unchanged, ignoring the rest", func() {
			So(Build("pg1", "5432", "backup", ""), ShouldEqual, "")
		})

		Convey("Keys are composed in fixed order", func() {
			So(Build("pg1", "5432", "backup", "main"),
				ShouldEqual, "host=pg1 port=5432 user=backup dbname=main")
		})

		Convey("Unset parameters are omitted", func() {
			So(Build("", "", "", "main"), ShouldEqual, "dbname=main")
			So(Build("pg1", "", "", "main"), ShouldEqual, "host=pg1 dbname=main")
			So(Build("", "5432", "backup", "main"),
				ShouldEqual, "port=5432 user=backup dbname=main")
		})

		Convey("Building twice yields the same string", func() {
			first := Build("pg1", "5432", "backup", "main")
			So(Build("pg1", "5432", "backup", "main"), ShouldEqual, first)
		})

		Convey("Quoted values round-trip through parsing", func() {
			out := Build(`my \ host's home`, "5432", "backup user", "main db")
			params, err := parseConninfo(out)

			So(err, ShouldBeNil)
			So(params["host"], ShouldEqual, `my \ host's home`)
			So(params["user"], ShouldEqual, "backup user")
			So(params["dbname"], ShouldEqual, "main db")
			So(params["port"], ShouldEqual, "5432")
		})

		Convey("Plain values round-trip through parsing", func() {
			out := Build("pg1", "5432", "backup", "main")
			params, err := parseConninfo(out)

			So(err, ShouldBeNil)
			So(params, ShouldResemble, map[string]string{
				"host": "pg1", "port": "5432", "user": "backup", "dbname": "main",
			})
		})
	})
}
