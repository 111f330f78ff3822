package cmd

import (
	"fmt"
)

// StorageCmd represents the storage command and its subcommands
type StorageCmd struct {
	Get    StorageGetCmd    `cmd:"" help:"Print the value stored under a key"`
	Set    StorageSetCmd    `cmd:"" help:"Store a value under a key"`
	Remove StorageRemoveCmd `cmd:"" help:"Delete a key"`
	Clear  StorageClearCmd  `cmd:"" help:"Delete every key"`
	List   StorageListCmd   `cmd:"" help:"List stored keys"`
}

type StorageGetCmd struct {
	Key string `arg:"" help:"Storage key"`
}

func (s *StorageGetCmd) Run() error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	value := store.Load(s.Key)
	if value == "" {
		return fmt.Errorf("no value stored under %q", s.Key)
	}
	_, _ = fmt.Fprintln(stdout, value)
	return nil
}

type StorageSetCmd struct {
	Key   string `arg:"" help:"Storage key"`
	Value string `arg:"" help:"Value to store"`
}

func (s *StorageSetCmd) Run() error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	store.Save(s.Key, s.Value)
	return nil
}

type StorageRemoveCmd struct {
	Key string `arg:"" help:"Storage key"`
}

func (s *StorageRemoveCmd) Run() error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	store.Remove(s.Key)
	return nil
}

type StorageClearCmd struct {
	Force bool `help:"Required to confirm deleting every key"`
}

func (s *StorageClearCmd) Run() error {
	if !s.Force {
		return fmt.Errorf("refusing to clear storage without --force")
	}
	store, err := openStorage()
	if err != nil {
		return err
	}
	store.Clear()
	return nil
}

type StorageListCmd struct{}

func (s *StorageListCmd) Run() error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	for _, key := range store.Keys() {
		_, _ = fmt.Fprintln(stdout, key)
	}
	return nil
}
