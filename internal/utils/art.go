package utils

// LakeAclArt is the banner shown by interactive commands.
const LakeAclArt = `
 _       _                  _
| | __ _| | _____  __ _  ___| |
| |/ _` + "`" + ` | |/ / _ \/ _` + "`" + ` |/ __| |
| | (_| |   <  __/ (_| | (__| |
|_|\__,_|_|\_\___|\__,_|\___|_|
`
