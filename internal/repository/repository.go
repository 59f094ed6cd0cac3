package repository

import "errors"

// ключи, под которыми хранятся коллекции
const KeyTasks = "tasks"
const KeyCompletedHistory = "completedHistory"

var ErrNotFound = errors.New("запись не найдена")
