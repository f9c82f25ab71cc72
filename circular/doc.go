// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides the fixed-capacity ring used to hold the members
// of a sliding window over a sorted interval file.
package circular
