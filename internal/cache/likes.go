package cache

// GetLiked returns the stored liked list.
func GetLiked(s Storage) []Item {
	return readList(s, KeyLiked)
}

// IsLiked reports whether a liked item has the given name.
func IsLiked(s Storage, name string) bool {
	return indexOf(GetLiked(s), name) >= 0
}

// ToggleLiked adds product when no liked item shares its name and removes the
// match otherwise. It returns the stored list.
func ToggleLiked(s Storage, product Item) ([]Item, error) {
	liked := GetLiked(s)
	if idx := indexOf(liked, product.Name()); idx >= 0 {
		liked = append(liked[:idx], liked[idx+1:]...)
	} else {
		liked = append(liked, product)
	}
	if err := writeList(s, KeyLiked, liked); err != nil {
		return nil, err
	}
	return liked, nil
}

func indexOf(items []Item, name string) int {
	for i, item := range items {
		if item.Name() == name {
			return i
		}
	}
	return -1
}
