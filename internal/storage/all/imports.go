// Package all enables every built-in storage backend. Import it for its side
// effects:
//
//	import _ "github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/all"
package all

import (
	_ "github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/memory"
	_ "github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/mssql"
	_ "github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/postgres"
	_ "github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/sqlite"
)
