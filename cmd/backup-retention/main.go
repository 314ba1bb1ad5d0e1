// backup-retention inventories a directory, removes files older than a
// retention period and copies the remaining ones to a backup destination,
// writing a CSV report of the source before and of the copy after.
//
// Usage:
//
//	# One run with the default 3 day retention
//	backup-retention --from /data/in --to /mnt/backup --log-dir /var/log/backup
//
//	# See what would happen without touching any file
//	backup-retention --from /data/in --to /mnt/backup --log-dir /tmp --days 7 --dry-run
//
//	# Run every night at 3 AM, settings from a file
//	backup-retention --config /etc/backup-retention.yaml --trigger schedule --schedule "0 3 * * *"
package main

import "os"

func main() {
	os.Exit(Execute(os.Args[1:]))
}
