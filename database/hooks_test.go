package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveHooksFireInOrder(t *testing.T) {
	db := &DB{}

	var calls []string
	db.AddSaveHook(func(table, id string) { calls = append(calls, "first:"+table+":"+id) })
	db.AddSaveHook(func(table, id string) { calls = append(calls, "second:"+table+":"+id) })

	db.NotifySaved("products", "42")

	assert.Equal(t, []string{"first:products:42", "second:products:42"}, calls)
}

func TestNotifySavedWithoutHooks(t *testing.T) {
	db := &DB{}
	assert.NotPanics(t, func() { db.NotifySaved("products", "42") })
}
