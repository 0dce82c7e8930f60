package hook

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolve(t *testing.T) {
	Convey("Given the process environment markers", t, func() {
		Convey("When neither marker is present", func() {
			res, err := Resolve(mapLookup(nil))

			Convey("The run is a direct-database backup", func() {
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, ModeDirect)
				So(res.Script, ShouldBeNil)
			})
		})

		Convey("When only one marker is present", func() {
			res, err := Resolve(mapLookup(map[string]string{EnvHook: "backup_script"}))

			Convey("The run is still a direct-database backup", func() {
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, ModeDirect)
			})
		})

		Convey("When the approved hook runs in its post phase", func() {
			env := map[string]string{
				EnvHook:      "backup_script",
				EnvPhase:     "post",
				EnvBackupDir: "/var/lib/backups/main/20240101T000000",
				EnvBackupID:  "20240101T000000",
				EnvStatus:    "DONE",
			}
			res, err := Resolve(mapLookup(env))

			Convey("The run is a hook-script backup with the provided context", func() {
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, ModeHookScript)
				So(res.Script, ShouldNotBeNil)
				So(res.Script.BackupDir, ShouldEqual, "/var/lib/backups/main/20240101T000000")
				So(res.Script.BackupID, ShouldEqual, "20240101T000000")
				So(res.Script.Status, ShouldEqual, "DONE")
			})
		})

		Convey("The retry hook is also approved", func() {
			env := map[string]string{
				EnvHook:      "backup_retry_script",
				EnvPhase:     "post",
				EnvBackupDir: "/backups/x",
				EnvBackupID:  "x",
				EnvStatus:    "DONE",
			}
			res, err := Resolve(mapLookup(env))

			So(err, ShouldBeNil)
			So(res.Mode, ShouldEqual, ModeHookScript)
		})

		Convey("When the hook/phase combination is not approved", func() {
			env := map[string]string{
				EnvHook:  "archive_script",
				EnvPhase: "pre",
			}
			_, err := Resolve(mapLookup(env))

			Convey("Resolution fails naming both observed values", func() {
				So(err, ShouldNotBeNil)
				var unsupported *UnsupportedHookError
				So(err, ShouldHaveSameTypeAs, unsupported)
				So(err.Error(), ShouldContainSubstring, "pre")
				So(err.Error(), ShouldContainSubstring, "archive_script")
			})
		})

		Convey("When an approved hook runs in its pre phase", func() {
			env := map[string]string{
				EnvHook:  "backup_script",
				EnvPhase: "pre",
			}
			_, err := Resolve(mapLookup(env))

			Convey("Resolution fails as an unsupported combination", func() {
				var unsupported *UnsupportedHookError
				So(err, ShouldHaveSameTypeAs, unsupported)
			})
		})

		Convey("When the backup directory is missing", func() {
			env := map[string]string{
				EnvHook:     "backup_script",
				EnvPhase:    "post",
				EnvBackupID: "x",
				EnvStatus:   "DONE",
			}
			_, err := Resolve(mapLookup(env))

			Convey("Resolution fails with a configuration error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, EnvBackupDir)
			})
		})

		Convey("When the backup identifier is missing", func() {
			env := map[string]string{
				EnvHook:      "backup_script",
				EnvPhase:     "post",
				EnvBackupDir: "/backups/x",
				EnvStatus:    "DONE",
			}
			_, err := Resolve(mapLookup(env))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, EnvBackupID)
		})

		Convey("When the backup status is not DONE", func() {
			env := map[string]string{
				EnvHook:      "backup_script",
				EnvPhase:     "post",
				EnvBackupDir: "/backups/x",
				EnvBackupID:  "x",
				EnvStatus:    "RUNNING",
			}
			_, err := Resolve(mapLookup(env))

			Convey("Resolution fails with the unrecoverable error", func() {
				var unrecoverable *UnrecoverableError
				So(err, ShouldHaveSameTypeAs, unrecoverable)
				So(err.Error(), ShouldContainSubstring, "/backups/x")
				So(err.Error(), ShouldContainSubstring, "RUNNING")
			})
		})

		Convey("When the backup status is absent", func() {
			env := map[string]string{
				EnvHook:      "backup_script",
				EnvPhase:     "post",
				EnvBackupDir: "/backups/x",
				EnvBackupID:  "x",
			}
			_, err := Resolve(mapLookup(env))

			var unrecoverable *UnrecoverableError
			So(err, ShouldHaveSameTypeAs, unrecoverable)
		})
	})
}
