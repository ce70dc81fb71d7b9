package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAdmins(t *testing.T) {
	admins := parseAdmins("yekta:yekta2013, mod:hunter2")
	require.Equal(t, []AdminCredential{
		{Username: "yekta", Secret: "yekta2013"},
		{Username: "mod", Secret: "hunter2"},
	}, admins)
}

func TestParseAdminsSkipsMalformedPairs(t *testing.T) {
	admins := parseAdmins("nosecret,:nouser,ok:yes")
	require.Equal(t, []AdminCredential{{Username: "ok", Secret: "yes"}}, admins)
}

func TestSplitCSV(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitCSV(" a , b ,"))
	require.Nil(t, splitCSV(""))
}
