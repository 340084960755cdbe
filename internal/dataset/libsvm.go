package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteLIBSVM writes a labeled set in the sparse "label idx:value ..." format
// with 1-based feature indices.
func WriteLIBSVM(w io.Writer, set *Set) error {
	if !set.Labeled() {
		return fmt.Errorf("libsvm output needs a labeled data set")
	}

	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for i, features := range set.Features {
		buf = strconv.AppendInt(buf[:0], int64(set.Labels[i]), 10)
		for j, v := range features {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(j+1), 10)
			buf = append(buf, ':')
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write libsvm row %d: %w", i+1, err)
		}
	}

	return bw.Flush()
}
