// SPDX-License-Identifier: MIT

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// ReadLegacy parses the two-integer format "<pool size> <max idle seconds>"
// used by older deployments.
func ReadLegacy(r io.Reader) (size int, idle time.Duration, err error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var fields [2]int
	for i := range fields {
		if !sc.Scan() {
			if err = sc.Err(); err == nil {
				err = io.ErrUnexpectedEOF
			}
			return 0, 0, fmt.Errorf("config: legacy field %d: %w", i+1, err)
		}
		if fields[i], err = strconv.Atoi(sc.Text()); err != nil {
			return 0, 0, fmt.Errorf("config: legacy field %d: %w", i+1, err)
		}
	}

	return fields[0], time.Duration(fields[1]) * time.Second, nil
}

// ApplyLegacy overlays a legacy file onto v. A missing file leaves v untouched.
func ApplyLegacy(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	size, idle, err := ReadLegacy(f)
	if err != nil {
		return err
	}
	v.Set("pool.size", size)
	v.Set("pool.max_idle", idle)

	return nil
}
